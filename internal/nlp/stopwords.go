package nlp

// dutchStopwords is the standard Dutch stopword list.
var dutchStopwords = []string{
	"de", "en", "van", "ik", "te", "dat", "die", "in", "een", "hij", "het",
	"niet", "zijn", "is", "was", "op", "aan", "met", "als", "voor", "had",
	"er", "maar", "om", "hem", "dan", "zou", "of", "wat", "mijn", "men",
	"dit", "zo", "door", "over", "ze", "zich", "bij", "ook", "tot", "je",
	"mij", "uit", "der", "daar", "haar", "naar", "heb", "hoe", "heeft",
	"hebben", "deze", "u", "want", "nog", "zal", "me", "zij", "nu", "ge",
	"geen", "omdat", "iets", "worden", "toch", "al", "waren", "veel", "meer",
	"doen", "toen", "moet", "ben", "zonder", "kan", "hun", "dus", "alles",
	"onder", "ja", "eens", "hier", "wie", "werd", "altijd", "doch", "wordt",
	"wezen", "kunnen", "ons", "zelf", "tegen", "na", "reeds", "wil", "kon",
	"niets", "uw", "iemand", "geweest", "andere",
}

// domainStopwords are corpus-specific terms too generic to carry signal in
// restaurant reviews.
var domainStopwords = []string{
	"beren", "restaurant", "eten", "drinken", "menukaart",
	"besteld", "bestellen", "gerechten",
}

// stopwordSet returns the union of the Dutch and domain stopword lists.
func stopwordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(dutchStopwords)+len(domainStopwords))
	for _, w := range dutchStopwords {
		set[w] = struct{}{}
	}
	for _, w := range domainStopwords {
		set[w] = struct{}{}
	}
	return set
}
