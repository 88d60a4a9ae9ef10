package search

// indianStates lists states and union territories in canonical lowercase form.
var indianStates = []string{
	"andhra pradesh",
	"arunachal pradesh",
	"assam",
	"bihar",
	"chhattisgarh",
	"goa",
	"gujarat",
	"haryana",
	"himachal pradesh",
	"jharkhand",
	"karnataka",
	"kerala",
	"madhya pradesh",
	"maharashtra",
	"manipur",
	"meghalaya",
	"mizoram",
	"nagaland",
	"odisha",
	"punjab",
	"rajasthan",
	"sikkim",
	"tamil nadu",
	"telangana",
	"tripura",
	"uttar pradesh",
	"uttarakhand",
	"west bengal",
	"andaman and nicobar islands",
	"chandigarh",
	"dadra and nagar haveli and daman and diu",
	"delhi",
	"jammu and kashmir",
	"ladakh",
	"lakshadweep",
	"puducherry",
}

// indianStateAliases maps unambiguous historic or common names to canonical
// states. Two letter codes are left out since they collide with words.
var indianStateAliases = map[string]string{
	"orissa":                 "odisha",
	"pondicherry":            "puducherry",
	"uttaranchal":            "uttarakhand",
	"new delhi":              "delhi",
	"nct of delhi":           "delhi",
	"tamilnadu":              "tamil nadu",
	"andaman and nicobar":    "andaman and nicobar islands",
	"andaman":                "andaman and nicobar islands",
	"j&k":                    "jammu and kashmir",
	"jammu kashmir":          "jammu and kashmir",
	"jammu & kashmir":        "jammu and kashmir",
	"daman and diu":          "dadra and nagar haveli and daman and diu",
	"dadra and nagar haveli": "dadra and nagar haveli and daman and diu",
	"bengal":                 "west bengal",
	"chattisgarh":            "chhattisgarh",
}
