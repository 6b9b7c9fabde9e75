package taxonomy

func intp(v int) *int { return &v }

// Topic ids used by the preset classifier tables. Exported so callers can
// reference catalog entries without magic numbers.
const (
	TopicArtsEntertainment = 1
	TopicMoviesTV          = 2
	TopicMusic             = 3
	TopicNews              = 4
	TopicShopping          = 5
	TopicSports            = 6
	TopicTravel            = 7
	TopicTechnology        = 8
	TopicSoftware          = 9
	TopicElectronics       = 10
	TopicFoodDrink         = 11
	TopicFinance           = 12
	TopicInvesting         = 13
	TopicGames             = 14
	TopicVideoGames        = 15
	TopicHealth            = 16
	TopicMedicalConditions = 17
	TopicCreditLoans       = 18
	TopicAdult             = 19
	TopicPolitics          = 20
	TopicReligion          = 21
	TopicEducation         = 22
	TopicBooks             = 23
)

// defaultTopics is the built-in two-level interest catalog. Sensitive
// categories are flagged so the cohort engine never surfaces them.
var defaultTopics = []Topic{
	{ID: TopicArtsEntertainment, Name: "Arts & Entertainment", Level: 0, Description: "Film, television, music and performing arts"},
	{ID: TopicMoviesTV, Name: "Movies & TV", ParentID: intp(TopicArtsEntertainment), Level: 1, Description: "Movies, television series and streaming video"},
	{ID: TopicMusic, Name: "Music", ParentID: intp(TopicArtsEntertainment), Level: 1, Description: "Music, audio and radio"},
	{ID: TopicBooks, Name: "Books & Literature", ParentID: intp(TopicArtsEntertainment), Level: 1, Description: "Books, e-books and literature"},
	{ID: TopicNews, Name: "News", Level: 0, Description: "Current events and journalism"},
	{ID: TopicShopping, Name: "Shopping", Level: 0, Description: "Online retail, marketplaces and deals"},
	{ID: TopicSports, Name: "Sports", Level: 0, Description: "Sports news, scores and leagues"},
	{ID: TopicTravel, Name: "Travel", Level: 0, Description: "Flights, hotels and destinations"},
	{ID: TopicTechnology, Name: "Technology", Level: 0, Description: "Computing and technology"},
	{ID: TopicSoftware, Name: "Software", ParentID: intp(TopicTechnology), Level: 1, Description: "Software development and tools"},
	{ID: TopicElectronics, Name: "Consumer Electronics", ParentID: intp(TopicTechnology), Level: 1, Description: "Gadgets, hardware and devices"},
	{ID: TopicFoodDrink, Name: "Food & Drink", Level: 0, Description: "Recipes, restaurants and cooking"},
	{ID: TopicFinance, Name: "Finance", Level: 0, Description: "Financial news and services"},
	{ID: TopicInvesting, Name: "Investing", ParentID: intp(TopicFinance), Level: 1, Description: "Markets, brokerage and investing"},
	{ID: TopicGames, Name: "Games", Level: 0, Description: "Games and puzzles"},
	{ID: TopicVideoGames, Name: "Video Games", ParentID: intp(TopicGames), Level: 1, Description: "Video games and game streaming"},
	{ID: TopicHealth, Name: "Health", Level: 0, IsSensitive: true, Description: "Health and wellness"},
	{ID: TopicMedicalConditions, Name: "Medical Conditions", ParentID: intp(TopicHealth), Level: 1, IsSensitive: true, Description: "Diseases, conditions and treatments"},
	{ID: TopicCreditLoans, Name: "Credit & Loans", ParentID: intp(TopicFinance), Level: 1, IsSensitive: true, Description: "Personal credit, loans and debt"},
	{ID: TopicAdult, Name: "Adult", Level: 0, IsSensitive: true, Description: "Adult content"},
	{ID: TopicPolitics, Name: "Politics", Level: 0, IsSensitive: true, Description: "Political parties, elections and advocacy"},
	{ID: TopicReligion, Name: "Religion", Level: 0, IsSensitive: true, Description: "Religious and spiritual content"},
	{ID: TopicEducation, Name: "Education", Level: 0, Description: "Schools, courses and learning"},
}
