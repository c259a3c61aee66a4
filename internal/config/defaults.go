package config

// Default returns the built-in configuration. The tables cover standard
// Australian addressing; Load overlays a YAML file on top of this, so
// deployments only override what differs.
func Default() *Config {
	return &Config{
		Parsing: ParsingConfig{
			UnitPrefixes:                 []string{"UNIT", "FLAT", "APT", "APARTMENT", "SUITE", "SHOP", "LOT"},
			UnitStreetSeparators:         []string{"/", "\\"},
			POBoxPrefixes:                []string{"PO BOX", "P.O. BOX", "P O BOX", "GPO BOX", "POBOX"},
			RMBPrefixes:                  []string{"RMB"},
			StreetNumberRangeSeparators:  []string{"-"},
			StripStreetNumberAlphaSuffix: true,
		},
		StreetTypes: StreetTypesConfig{
			Canonical: map[string]StreetTypeEntry{
				"street":    {Label: "Street", Aliases: []string{"ST", "STR"}},
				"road":      {Label: "Road", Aliases: []string{"RD"}},
				"avenue":    {Label: "Avenue", Aliases: []string{"AVE", "AV"}},
				"drive":     {Label: "Drive", Aliases: []string{"DR", "DRV"}},
				"court":     {Label: "Court", Aliases: []string{"CT", "CRT"}},
				"place":     {Label: "Place", Aliases: []string{"PL"}},
				"crescent":  {Label: "Crescent", Aliases: []string{"CRES", "CR"}},
				"boulevard": {Label: "Boulevard", Aliases: []string{"BLVD", "BVD"}},
				"lane":      {Label: "Lane", Aliases: []string{"LN"}},
				"highway":   {Label: "Highway", Aliases: []string{"HWY"}},
				"parade":    {Label: "Parade", Aliases: []string{"PDE"}},
				"circuit":   {Label: "Circuit", Aliases: []string{"CCT"}},
				"close":     {Label: "Close", Aliases: []string{"CL"}},
				"terrace":   {Label: "Terrace", Aliases: []string{"TCE"}},
				"way":       {Label: "Way", Aliases: []string{"WY"}},
				"esplanade": {Label: "Esplanade", Aliases: []string{"ESP"}},
				"grove":     {Label: "Grove", Aliases: []string{"GRV"}},
				"square":    {Label: "Square", Aliases: []string{"SQ"}},
				"walk":      {Label: "Walk", Aliases: []string{"WLK"}},
				"rise":      {Label: "Rise", Aliases: []string{"RSE"}},
				"parkway":   {Label: "Parkway", Aliases: []string{"PKWY", "PWY"}},
				"track":     {Label: "Track", Aliases: []string{"TRK"}},
				"trail":     {Label: "Trail", Aliases: []string{"TRL"}},
				"loop":      {Label: "Loop", Aliases: []string{"LP"}},
				"mews":      {Label: "Mews", Aliases: []string{"MWS"}},
				"alley":     {Label: "Alley", Aliases: []string{"ALY"}},
				"promenade": {Label: "Promenade", Aliases: []string{"PROM"}},
				"circle":    {Label: "Circle", Aliases: []string{"CIR"}},
				"gardens":   {Label: "Gardens", Aliases: []string{"GDNS"}},
				"point":     {Label: "Point", Aliases: []string{"PT"}},
			},
			Misspellings: map[string]string{
				"STREEET":    "street",
				"STRET":      "street",
				"STEET":      "street",
				"SREET":      "street",
				"RAOD":       "road",
				"ROAS":       "road",
				"AVENEU":     "avenue",
				"AVENUE.":    "avenue",
				"CRESENT":    "crescent",
				"CRECENT":    "crescent",
				"BOULEVARDE": "boulevard",
				"HIGWAY":     "highway",
				"HIGHWY":     "highway",
				"CICUIT":     "circuit",
				"TERACE":     "terrace",
				"TERRACE.":   "terrace",
			},
			FuzzyMatching: FuzzyMatchingConfig{
				Enabled:  true,
				MinScore: 85,
			},
		},
		Localities: LocalitiesConfig{
			States: StatesConfig{
				Valid: []string{"NSW", "VIC", "QLD", "SA", "WA", "TAS", "NT", "ACT"},
				Aliases: map[string]string{
					"NEW SOUTH WALES":              "NSW",
					"N.S.W.":                       "NSW",
					"VICTORIA":                     "VIC",
					"VIC.":                         "VIC",
					"QUEENSLAND":                   "QLD",
					"QLD.":                         "QLD",
					"SOUTH AUSTRALIA":              "SA",
					"S.A.":                         "SA",
					"WESTERN AUSTRALIA":            "WA",
					"W.A.":                         "WA",
					"TASMANIA":                     "TAS",
					"TAS.":                         "TAS",
					"NORTHERN TERRITORY":           "NT",
					"N.T.":                         "NT",
					"AUSTRALIAN CAPITAL TERRITORY": "ACT",
					"A.C.T.":                       "ACT",
				},
			},
			SuburbMisspellings: map[string]string{
				"SIDNEY":     "SYDNEY",
				"MELBORNE":   "MELBOURNE",
				"MELBOURN":   "MELBOURNE",
				"BRISBAIN":   "BRISBANE",
				"BRISBAINE":  "BRISBANE",
				"CANBERA":    "CANBERRA",
				"CANBURRA":   "CANBERRA",
				"FREEMANTLE": "FREMANTLE",
				"TOOWOMBA":   "TOOWOOMBA",
				"CAIRNES":    "CAIRNS",
				"NEWCASLE":   "NEWCASTLE",
				"PARAMATTA":  "PARRAMATTA",
				"WOLLONGON":  "WOLLONGONG",
			},
		},
		Validation: ValidationConfig{
			Postcode: PostcodeValidation{
				Pattern: `^\d{4}$`,
				Ranges: map[string][][]int{
					"NSW": {{1000, 2599}, {2619, 2899}, {2921, 2999}},
					"ACT": {{200, 299}, {2600, 2618}, {2900, 2920}},
					"VIC": {{3000, 3999}, {8000, 8999}},
					"QLD": {{4000, 4999}, {9000, 9999}},
					"SA":  {{5000, 5999}},
					"WA":  {{6000, 6797}, {6800, 6999}},
					"TAS": {{7000, 7999}},
					"NT":  {{800, 999}},
				},
			},
			StreetNumber: StreetNumberValidation{
				MinValue: 1,
				MaxValue: 99999,
			},
		},
		International: InternationalConfig{
			Enabled: true,
			// Tokens are matched as substrings of the whole address, so
			// entries must not occur inside Australian place names
			// (ENGLAND would hit New England Highway, CANADA would hit
			// Canada Bay).
			CountryTokens: []string{
				"NEW ZEALAND", "UNITED KINGDOM", "GREAT BRITAIN",
				"UNITED STATES", "GERMANY", "ITALY", "SPAIN",
				"NETHERLANDS", "SWITZERLAND", "AUSTRIA", "SWEDEN",
				"NORWAY", "DENMARK", "JAPAN", "INDONESIA", "SINGAPORE",
				"MALAYSIA", "HONG KONG", "PHILIPPINES", "THAILAND",
				"VIETNAM", "SOUTH AFRICA", "BRAZIL", "MEXICO", "FIJI",
				"PAPUA NEW GUINEA",
			},
			RequireFourDigitPostcode: false,
		},
		Scoring: ScoringConfig{
			BaseScore: 100,
			Penalties: PenaltyConfig{
				InternationalAddress:      80,
				InvalidAddress:            90,
				AmbiguousStreetNumber:     7,
				AmbiguousUnitNumber:       5,
				ConflictingIndicators:     10,
				UnparsedComponentsPresent: 12,
				NoGNAFMatch:               15,
				ApproximateGNAFMatch:      8,
				SuburbCorrected:           10,
				StateCorrected:            10,
				PostcodeCorrected:         10,
				FuzzyStreetType:           5,
				FuzzySuburb:               8,
			},
			FlagPenalties: map[string]int{
				"INVALID_POSTCODE_FORMAT":  15,
				"POSTCODE_STATE_MISMATCH":  12,
				"INVALID_STREET_NUMBER":    10,
				"SUBURB_POSTCODE_MISMATCH": 12,
			},
		},
		GNAF: GNAFConfig{
			Enabled:               true,
			ConnectionURL:         "",
			AllowApproximateMatch: true,
			MatchingThresholds: GNAFThresholds{
				MinAcceptableScore: 0.75,
			},
			Corrections: GNAFCorrections{
				MinScoreForCorrection: 0.9,
				CorrectableFields:     []string{"suburb", "state", "postcode"},
			},
		},
		MLModel: MLModelConfig{
			Enabled:         true,
			ModelPath:       "",
			MinConfidence:   0.7,
			FallbackToRules: true,
		},
		Schemas: map[string]Schema{
			"default": {
				"street_address": "street_address",
				"suburb":         "suburb",
				"state":          "state",
				"postcode":       "postcode",
				"id_column":      "id",
			},
			"gnaf_export": {
				"street_address": "ADDRESS_LINE_1",
				"suburb":         "LOCALITY_NAME",
				"state":          "STATE_ABBREVIATION",
				"postcode":       "POSTCODE",
				"id_column":      "ADDRESS_DETAIL_PID",
			},
			"crm": {
				"street_address": "AddressLine",
				"suburb":         "City",
				"state":          "Region",
				"postcode":       "PostalCode",
			},
		},
		Processing: ProcessingConfig{
			MaxBatchSize:            50000,
			ContinueOnError:         true,
			PreserveOriginalColumns: true,
			WorkerCount:             0,
		},
		Output: OutputConfig{
			InconsistencyFlagsFormat: "comma_separated",
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
	}
}
