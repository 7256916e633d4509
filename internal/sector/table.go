package sector

// Canonical sector names. The sectors table is seeded from All.
const (
	Banking        = "Banking/Fintech"
	OilGasMining   = "Oil/Gas/Mining"
	Telecom        = "Telecommunications"
	Technology     = "Technology"
	Healthcare     = "Healthcare/Pharma"
	Utilities      = "Utilities/Renewables"
	Transportation = "Transportation"
	Agriculture    = "Agriculture/Food"
	RealEstate     = "Real Estate"
	Retail         = "Retail/Consumer"
	Defence        = "Defence/Aerospace"
)

var All = []string{
	Banking, OilGasMining, Telecom, Technology, Healthcare, Utilities,
	Transportation, Agriculture, RealEstate, Retail, Defence,
}

// SymbolRule maps an exact lowercase ticker to a sector.
type SymbolRule struct {
	Symbol string
	Sector string
}

// KeywordRule maps a lowercase substring of an asset description to a
// sector. Matching is plain substring, so short keywords also hit inside
// longer words ("su" matches "sushi").
type KeywordRule struct {
	Keyword string
	Sector  string
}

// Symbols is consulted before any keyword. Exchange suffixes (".to", ".v")
// are stripped before lookup.
var Symbols = []SymbolRule{
	{"td", Banking}, {"ry", Banking}, {"bns", Banking}, {"bmo", Banking},
	{"cm", Banking}, {"na", Banking}, {"mfc", Banking}, {"slf", Banking},
	{"pow", Banking}, {"gwo", Banking}, {"ifc", Banking}, {"eqb", Banking},

	{"su", OilGasMining}, {"enb", OilGasMining}, {"cnq", OilGasMining},
	{"cve", OilGasMining}, {"imo", OilGasMining}, {"trp", OilGasMining},
	{"ppl", OilGasMining}, {"teck.b", OilGasMining}, {"abx", OilGasMining},
	{"ntr", OilGasMining}, {"cco", OilGasMining}, {"fm", OilGasMining},
	{"tou", OilGasMining}, {"arx", OilGasMining},

	{"bce", Telecom}, {"t", Telecom}, {"rci.b", Telecom}, {"qbr.b", Telecom},

	{"shop", Technology}, {"otex", Technology}, {"gib.a", Technology},
	{"csu", Technology}, {"bb", Technology}, {"aapl", Technology},
	{"msft", Technology}, {"googl", Technology}, {"amzn", Technology},
	{"nvda", Technology}, {"meta", Technology},

	{"pfe", Healthcare}, {"jnj", Healthcare}, {"bhc", Healthcare},

	{"h", Utilities}, {"fts", Utilities}, {"bep.un", Utilities},
	{"ema", Utilities}, {"aqn", Utilities},

	{"cnr", Transportation}, {"cp", Transportation}, {"ac", Transportation},
	{"tfii", Transportation},

	{"sap", Agriculture}, {"mfi", Agriculture},

	{"l", Retail}, {"dol", Retail}, {"ctc.a", Retail}, {"mru", Retail},
	{"qsr", Retail}, {"atd", Retail},

	{"cae", Defence}, {"lmt", Defence},
}

// Keywords is scanned in order; the first hit wins. Longer company names
// sit ahead of generic words so "sun life" resolves to banking before "su"
// is ever reached.
var Keywords = []KeywordRule{
	{"royal bank", Banking}, {"toronto-dominion", Banking}, {"td bank", Banking},
	{"scotiabank", Banking}, {"bank of nova scotia", Banking},
	{"bank of montreal", Banking}, {"cibc", Banking}, {"national bank", Banking},
	{"manulife", Banking}, {"sun life", Banking}, {"power corporation", Banking},
	{"great-west", Banking}, {"intact financial", Banking}, {"desjardins", Banking},
	{"bank", Banking}, {"fintech", Banking},

	{"suncor", OilGasMining}, {"enbridge", OilGasMining}, {"cenovus", OilGasMining},
	{"canadian natural", OilGasMining}, {"imperial oil", OilGasMining},
	{"tc energy", OilGasMining}, {"pembina", OilGasMining}, {"teck", OilGasMining},
	{"barrick", OilGasMining}, {"nutrien", OilGasMining}, {"cameco", OilGasMining},
	{"first quantum", OilGasMining}, {"tourmaline", OilGasMining},
	{"petroleum", OilGasMining}, {"oil", OilGasMining}, {"gas", OilGasMining},
	{"mining", OilGasMining}, {"pipeline", OilGasMining}, {"su", OilGasMining},

	{"bell canada", Telecom}, {"bce", Telecom}, {"telus", Telecom},
	{"rogers", Telecom}, {"quebecor", Telecom}, {"videotron", Telecom},
	{"telecom", Telecom},

	{"shopify", Technology}, {"open text", Technology}, {"opentext", Technology},
	{"cgi group", Technology}, {"constellation software", Technology},
	{"blackberry", Technology}, {"apple", Technology}, {"microsoft", Technology},
	{"alphabet", Technology}, {"google", Technology}, {"amazon", Technology},
	{"nvidia", Technology}, {"software", Technology}, {"tech", Technology},

	{"pfizer", Healthcare}, {"johnson & johnson", Healthcare}, {"bausch", Healthcare},
	{"pharma", Healthcare}, {"health", Healthcare}, {"medical", Healthcare},

	{"hydro one", Utilities}, {"fortis", Utilities}, {"brookfield renewable", Utilities},
	{"emera", Utilities}, {"algonquin", Utilities}, {"renewable", Utilities},
	{"solar", Utilities}, {"wind farm", Utilities}, {"utility", Utilities},

	{"canadian national railway", Transportation}, {"cn rail", Transportation},
	{"canadian pacific", Transportation}, {"cpkc", Transportation},
	{"air canada", Transportation}, {"westjet", Transportation},
	{"tfi international", Transportation}, {"railway", Transportation},
	{"airline", Transportation},

	{"saputo", Agriculture}, {"maple leaf foods", Agriculture},
	{"farm", Agriculture}, {"agri", Agriculture},

	{"real estate", RealEstate}, {"reit", RealEstate}, {"rental property", RealEstate},
	{"condominium", RealEstate},

	{"loblaw", Retail}, {"dollarama", Retail}, {"canadian tire", Retail},
	{"metro inc", Retail}, {"couche-tard", Retail}, {"costco", Retail},
	{"walmart", Retail}, {"tim hortons", Retail}, {"restaurant brands", Retail},

	{"lockheed", Defence}, {"cae inc", Defence}, {"general dynamics", Defence},
	{"defence", Defence}, {"defense", Defence}, {"aerospace", Defence},
}
