package classifier

import "github.com/privacykit/cohortd/internal/taxonomy"

// presetMappings is the built-in domain table shipped with the classifier.
// Entries referencing topics absent from the active taxonomy are skipped
// at construction time.
var presetMappings = []Mapping{
	{Domain: "netflix.com", TopicIDs: []int{taxonomy.TopicArtsEntertainment, taxonomy.TopicMoviesTV}, Confidence: 0.95, Source: SourceManual},
	{Domain: "imdb.com", TopicIDs: []int{taxonomy.TopicMoviesTV}, Confidence: 0.95, Source: SourceManual},
	{Domain: "hulu.com", TopicIDs: []int{taxonomy.TopicMoviesTV}, Confidence: 0.9, Source: SourceManual},
	{Domain: "spotify.com", TopicIDs: []int{taxonomy.TopicMusic}, Confidence: 0.95, Source: SourceManual},
	{Domain: "soundcloud.com", TopicIDs: []int{taxonomy.TopicMusic}, Confidence: 0.9, Source: SourceML},
	{Domain: "youtube.com", TopicIDs: []int{taxonomy.TopicArtsEntertainment, taxonomy.TopicMoviesTV}, Confidence: 0.85, Source: SourceML},
	{Domain: "cnn.com", TopicIDs: []int{taxonomy.TopicNews}, Confidence: 0.95, Source: SourceManual},
	{Domain: "bbc.com", TopicIDs: []int{taxonomy.TopicNews}, Confidence: 0.95, Source: SourceManual},
	{Domain: "reuters.com", TopicIDs: []int{taxonomy.TopicNews}, Confidence: 0.95, Source: SourceManual},
	{Domain: "amazon.com", TopicIDs: []int{taxonomy.TopicShopping}, Confidence: 0.9, Source: SourceManual},
	{Domain: "ebay.com", TopicIDs: []int{taxonomy.TopicShopping}, Confidence: 0.95, Source: SourceManual},
	{Domain: "etsy.com", TopicIDs: []int{taxonomy.TopicShopping}, Confidence: 0.9, Source: SourceML},
	{Domain: "espn.com", TopicIDs: []int{taxonomy.TopicSports}, Confidence: 0.95, Source: SourceManual},
	{Domain: "nba.com", TopicIDs: []int{taxonomy.TopicSports}, Confidence: 0.95, Source: SourceManual},
	{Domain: "booking.com", TopicIDs: []int{taxonomy.TopicTravel}, Confidence: 0.95, Source: SourceManual},
	{Domain: "airbnb.com", TopicIDs: []int{taxonomy.TopicTravel}, Confidence: 0.95, Source: SourceManual},
	{Domain: "github.com", TopicIDs: []int{taxonomy.TopicTechnology, taxonomy.TopicSoftware}, Confidence: 0.95, Source: SourceManual},
	{Domain: "stackoverflow.com", TopicIDs: []int{taxonomy.TopicSoftware}, Confidence: 0.95, Source: SourceManual},
	{Domain: "theverge.com", TopicIDs: []int{taxonomy.TopicTechnology, taxonomy.TopicElectronics}, Confidence: 0.85, Source: SourceML},
	{Domain: "allrecipes.com", TopicIDs: []int{taxonomy.TopicFoodDrink}, Confidence: 0.95, Source: SourceManual},
	{Domain: "doordash.com", TopicIDs: []int{taxonomy.TopicFoodDrink}, Confidence: 0.9, Source: SourceML},
	{Domain: "bloomberg.com", TopicIDs: []int{taxonomy.TopicFinance, taxonomy.TopicInvesting}, Confidence: 0.9, Source: SourceManual},
	{Domain: "coinbase.com", TopicIDs: []int{taxonomy.TopicInvesting}, Confidence: 0.85, Source: SourceML},
	{Domain: "steampowered.com", TopicIDs: []int{taxonomy.TopicGames, taxonomy.TopicVideoGames}, Confidence: 0.95, Source: SourceManual},
	{Domain: "twitch.tv", TopicIDs: []int{taxonomy.TopicVideoGames}, Confidence: 0.85, Source: SourceML},
	{Domain: "goodreads.com", TopicIDs: []int{taxonomy.TopicBooks}, Confidence: 0.95, Source: SourceManual},
	{Domain: "coursera.org", TopicIDs: []int{taxonomy.TopicEducation}, Confidence: 0.95, Source: SourceManual},
	{Domain: "khanacademy.org", TopicIDs: []int{taxonomy.TopicEducation}, Confidence: 0.95, Source: SourceManual},
}

// defaultKeywordRules is the built-in fallback rule table used when no
// exact or parent-domain mapping matches.
var defaultKeywordRules = []KeywordRule{
	{Keywords: []string{"news", "daily", "times", "herald", "tribune"}, TopicIDs: []int{taxonomy.TopicNews}, Weight: 1.0},
	{Keywords: []string{"movie", "film", "cinema", "stream", "tv"}, TopicIDs: []int{taxonomy.TopicArtsEntertainment, taxonomy.TopicMoviesTV}, Weight: 1.0},
	{Keywords: []string{"music", "radio", "song", "audio"}, TopicIDs: []int{taxonomy.TopicMusic}, Weight: 1.0},
	{Keywords: []string{"shop", "store", "deal", "market"}, TopicIDs: []int{taxonomy.TopicShopping}, Weight: 0.9},
	{Keywords: []string{"sport", "football", "soccer", "basketball", "golf"}, TopicIDs: []int{taxonomy.TopicSports}, Weight: 1.0},
	{Keywords: []string{"travel", "hotel", "flight", "trip", "tour"}, TopicIDs: []int{taxonomy.TopicTravel}, Weight: 1.0},
	{Keywords: []string{"tech", "software", "cloud", "code", "dev"}, TopicIDs: []int{taxonomy.TopicTechnology, taxonomy.TopicSoftware}, Weight: 0.9},
	{Keywords: []string{"recipe", "food", "kitchen", "cook"}, TopicIDs: []int{taxonomy.TopicFoodDrink}, Weight: 1.0},
	{Keywords: []string{"game", "gaming", "arcade", "quiz"}, TopicIDs: []int{taxonomy.TopicGames, taxonomy.TopicVideoGames}, Weight: 0.9},
	{Keywords: []string{"finance", "invest", "trading", "stock"}, TopicIDs: []int{taxonomy.TopicFinance, taxonomy.TopicInvesting}, Weight: 0.9},
	{Keywords: []string{"learn", "course", "school", "academy"}, TopicIDs: []int{taxonomy.TopicEducation}, Weight: 0.9},
	{Keywords: []string{"book", "read", "novel"}, TopicIDs: []int{taxonomy.TopicBooks}, Weight: 0.8},
}
