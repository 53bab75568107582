package patterns

import "github.com/Veraticus/tranche/internal/model"

// Library version. Bump when a rule change alters extraction output.
const DefaultVersion = "2024.4"

// Tunables used when a library leaves them unset.
const (
	DefaultNormalization     = 20.0
	DefaultMaxClassIDLength  = 5
	DefaultNeighborhoodLimit = 600
)

// Shared expression fragments. All rules are compiled case-insensitively, so
// proper-noun runs opt back into case sensitivity with (?-i:...).
const (
	scaleExpr  = `(?:\s*(?:millions?|billions?|thousands?|mm|bn|bb)\b|k\b)?`
	amountExpr = `(?:US\$\s?|\$\s?|USD\s?)\d[\d,]*(?:\.\d+)?` + scaleExpr
	bareExpr   = `\d{1,3}(?:,\d{3}){2,}(?:\.\d+)?`
	amountCap  = `(` + amountExpr + `)`
	balanceCap = `(` + amountExpr + `|` + bareExpr + `)`
	pctCap     = `(\d{1,3}(?:\.\d+)?)\s*%`
	monthExpr  = `\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sept?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	dateExpr   = `(?:\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}-\d{1,2}-\d{4}|` + monthExpr + `\.?\s+\d{1,2},?\s+\d{4})`
	dateCap    = `(` + dateExpr + `)`
	nameRun    = `(?-i:[A-Z][\w&.'\-]*(?:,?[ \t]+(?:of[ \t]+|and[ \t]+|&[ \t]+)?[A-Z][\w&.'\-]*){0,5})`
	nameCap    = `(` + nameRun + `)`
	lineCap    = `([^\n]{2,120})`
	classIDCap = `((?-i:[A-Z0-9]{1,3}(?:-[A-Z0-9]{1,2})?))`
	// After a Class, Series or Tranche keyword a lowercase id is accepted.
	// Forms with no trailing Notes word take only a letter plus digits so
	// prose like "tranche is" is not read as an id.
	keyedIDCap = `([a-z0-9]{1,3}(?:-[a-z0-9]{1,2})?)`
	shortIDCap = `((?-i:[A-Z0-9]{1,3}(?:-[A-Z0-9]{1,2})?)|[a-z]\d?(?:-\d{1,2})?)`
	ratingTok  = `(?-i:AAA|AA\+|AA-|AA|A\+|A-|A|BBB\+|BBB-|BBB|BB\+|BB-|BB|B\+|B-|B|Aaa|Aa[1-3]|A[1-3]|Baa[1-3]|Ba[1-3]|NR)(?:\s?\(sf\)|sf)?`
	ratingCap  = `(?:^|[\s(,;/:])(` + ratingTok + `)(?:$|[\s),;/.])`
)

// Default returns the built-in library. Callers get a fresh copy each time
// and may modify it before compiling.
func Default() *Library {
	return &Library{
		Version:                DefaultVersion,
		NewIssue:               defaultNewIssueRules(),
		Surveillance:           defaultSurveillanceRules(),
		NoteClassFields:        defaultNoteClassRules(),
		ClassDiscovery:         defaultClassDiscovery(),
		ClassCount:             defaultClassCount(),
		SectorKeywords:         defaultSectorKeywords(),
		StopLetters:            []string{"I", "O", "U", "X", "Y", "Z", "Q"},
		StopWords:              []string{"THE", "AND", "OR", "OF", "TO", "IN", "FOR", "WITH", "BY", "FROM"},
		ContextTerms:           []string{"subordination", "enhancement", "tranch", "securit", "notes", "principal", "interest", "maturity", "rating"},
		NewIssueVocabulary:     defaultNewIssueVocabulary(),
		SurveillanceVocabulary: defaultSurveillanceVocabulary(),
		Normalization:          DefaultNormalization,
		MaxClassIDLength:       DefaultMaxClassIDLength,
		NeighborhoodLimit:      DefaultNeighborhoodLimit,
	}
}

func defaultNewIssueRules() []ExtractionRule {
	return []ExtractionRule{
		{
			Field: "deal_name",
			Kind:  model.KindText,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `Deal\s+Name\s*:\s*` + lineCap},
				{Name: "issuing entity", Regex: `Issuing\s+Entity\s*:\s*` + lineCap},
				{Name: "trust with series", Regex: `(` + nameRun + `[ \t]+(?:Trust|Funding|Receivables|Securitization|LLC|Issuer)\s+(?:19|20)\d{2}-[A-Z0-9]{1,4})\b`},
				{Name: "series suffix", Regex: `(` + nameRun + `[ \t]+Series\s+(?:19|20)\d{2}-[A-Z0-9]{1,4})\b`},
			},
		},
		{
			Field: "issuer",
			Kind:  model.KindText,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `\bIssuer\s*:\s*` + lineCap},
				{Name: "as issuer", Regex: nameCap + `,?\s+(?:will\s+act\s+)?as\s+(?:the\s+)?issu(?:er|ing\s+entity)\b`},
				{Name: "issued by", Regex: `issued\s+by\s+` + nameCap},
			},
		},
		{
			Field: "deal_type",
			Kind:  model.KindText,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `Deal\s+Type\s*:\s*` + lineCap},
				{Name: "backed notes", Regex: `\b((?:asset|mortgage)[- ]backed\s+(?:notes|securities|certificates))\b`},
				{Name: "trust structure", Regex: `\b((?:master|owner|grantor)\s+trust)\b`},
			},
		},
		{
			Field: "issuance_date",
			Kind:  model.KindDate,
			Patterns: []FieldPattern{
				{Name: "closing date", Regex: `(?:closing|issuance|settlement)\s+date\s*(?:is|will\s+be|on\s+or\s+about|:)?\s*(?:on\s+or\s+about\s+)?` + dateCap},
				{Name: "dated", Regex: `\bdated\s+(?:as\s+of\s+)?` + dateCap},
			},
		},
		{
			Field: "total_deal_size",
			Kind:  model.KindCurrency,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `(?:total\s+)?deal\s+size[^$\n]{0,30}?` + amountCap},
				{Name: "aggregate principal", Regex: `(?:total|aggregate)\s+(?:initial\s+)?(?:original\s+)?(?:principal\s+(?:amount|balance)|note\s+balance|offering(?:\s+size)?)[^$\n]{0,40}?` + amountCap},
				{Name: "amount of notes", Regex: amountCap + `\s+(?:of\s+)?(?:aggregate\s+principal\s+amount\s+of\s+)?(?:asset[- ]backed\s+)?(?:notes|securities)\b`},
			},
		},
		{
			Field:   "currency",
			Kind:    model.KindText,
			Default: "USD",
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `(?:currency|denominated\s+in)\s*:?\s*\b((?-i:[A-Z]{3}))\b`},
				{Name: "iso code", Regex: `\b((?-i:USD|EUR|GBP|CAD|JPY|AUD|CHF))\b`},
			},
		},
		{
			Field: "asset_type",
			Kind:  model.KindText,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `(?:asset|collateral)\s+type\s*:\s*` + lineCap},
				{Name: "receivable class", Regex: `\b((?:prime\s+|subprime\s+|retail\s+)?(?:auto(?:mobile)?|motor\s+vehicle|equipment|credit\s+card|student|consumer|mortgage|fleet|dealer\s+floorplan|timeshare|solar|aircraft|device\s+payment)\s+(?:loan|lease|installment\s+sale\s+contract|receivable)s?)\b`},
			},
		},
		{
			Field: "originator",
			Kind:  model.KindText,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `\b(?:Originator|Sponsor|Seller)\s*:\s*` + lineCap},
				{Name: "as originator", Regex: nameCap + `,?\s+(?:will\s+act\s+)?as\s+(?:the\s+)?(?:originator|sponsor)\b`},
				{Name: "originated by", Regex: `originated\s+by\s+` + nameCap},
			},
		},
		{
			Field: "servicer",
			Kind:  model.KindText,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `\bServicer\s*:\s*` + lineCap},
				{Name: "as servicer", Regex: nameCap + `,?\s+(?:will\s+act\s+)?as\s+(?:the\s+)?servicer\b`},
				{Name: "serviced by", Regex: `serviced\s+by\s+` + nameCap},
			},
		},
		{
			Field: "trustee",
			Kind:  model.KindText,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `\b(?:Indenture\s+)?Trustee\s*:\s*` + lineCap},
				{Name: "as trustee", Regex: nameCap + `,?\s+(?:will\s+act\s+)?as\s+(?:the\s+)?(?:indenture\s+|owner\s+)?trustee\b`},
			},
		},
		{
			Field:   "rating_agency",
			Kind:    model.KindText,
			Default: "Unknown",
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `Rating\s+Agenc(?:y|ies)\s*:\s*` + lineCap},
				{Name: "agency name", Regex: `\b(KBRA|Kroll\s+Bond\s+Rating\s+Agency|Moody'?s|S&P(?:\s+Global)?|Standard\s+&\s+Poor'?s|Fitch(?:\s+Ratings)?|DBRS\s+Morningstar|DBRS|Morningstar)`},
			},
		},
		{
			Field:   "class_a_advance_rate",
			Kind:    model.KindPercentage,
			Default: "80.0",
			Patterns: []FieldPattern{
				{Name: "class a", Regex: `Class\s+A\s+advance\s+rate[^%\n]{0,30}?` + pctCap},
				{Name: "any advance rate", Regex: `advance\s+rate[^%\n]{0,40}?` + pctCap},
			},
		},
		{
			Field:   "initial_oc",
			Kind:    model.KindPercentage,
			Default: "10.0",
			Patterns: []FieldPattern{
				{Name: "initial oc", Regex: `initial\s+(?:overcollateralization|OC)(?:\s+(?:amount|level|target))?[^%\n]{0,40}?` + pctCap},
				{Name: "any oc", Regex: `overcollateralization(?:\s+(?:amount|level|target))?[^%\n]{0,40}?` + pctCap},
			},
		},
		{
			Field:   "expected_cnl_low",
			Kind:    model.KindPercentage,
			Default: "2.0",
			Patterns: []FieldPattern{
				{Name: "range low", Regex: `(?:expected|base\s+case)\s+(?:cumulative\s+net\s+loss(?:es)?|CNL)[^%\n]{0,40}?` + pctCap},
				{Name: "cnl label", Regex: `\bCNL\s*(?:expectation|proxy)?\s*:?\s*` + pctCap},
			},
		},
		{
			Field: "expected_cnl_high",
			Kind:  model.KindPercentage,
			Patterns: []FieldPattern{
				{Name: "range high", Regex: `(?:expected|base\s+case)\s+(?:cumulative\s+net\s+loss(?:es)?|CNL)[^%\n]{0,40}?\d{1,3}(?:\.\d+)?\s*%?\s*(?:-|to|–)\s*` + pctCap},
			},
		},
		{
			Field:   "reserve_account",
			Kind:    model.KindPercentage,
			Default: "1.0",
			Patterns: []FieldPattern{
				{Name: "reserve", Regex: `reserve\s+(?:account|fund)[^%\n]{0,50}?` + pctCap},
			},
		},
		{
			Field:   "avg_seasoning",
			Kind:    model.KindInteger,
			Default: "12",
			Patterns: []FieldPattern{
				{Name: "seasoning months", Regex: `(?:weighted\s+)?average\s+seasoning[^\d\n]{0,30}(\d{1,3})\s*months?`},
				{Name: "seasoning label", Regex: `\bseasoning\s*:\s*(\d{1,3})\b`},
			},
		},
		{
			Field:   "top_obligor_conc",
			Kind:    model.KindPercentage,
			Default: "1.0",
			Patterns: []FieldPattern{
				{Name: "top obligor", Regex: `(?:top|largest)\s+(?:\d+\s+)?obligors?(?:\s+concentration)?[^%\n]{0,50}?` + pctCap},
			},
		},
	}
}

func defaultSurveillanceRules() []ExtractionRule {
	return []ExtractionRule{
		{
			Field: "deal_identifier",
			Kind:  model.KindText,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `\b(?:Deal|Transaction)(?:\s+(?:Name|ID|Identifier))?\s*:\s*` + lineCap},
				{Name: "trust with series", Regex: `(` + nameRun + `[ \t]+(?:Trust|Funding|Receivables|Securitization|LLC|Issuer)\s+(?:19|20)\d{2}-[A-Z0-9]{1,4})\b`},
			},
		},
		{
			Field: "report_date",
			Kind:  model.KindDate,
			Patterns: []FieldPattern{
				{Name: "report date", Regex: `(?:report|distribution|payment|determination)\s+date\s*:?\s*` + dateCap},
				{Name: "as of", Regex: `\bas\s+of\s+` + dateCap},
			},
		},
		{
			Field: "collection_period",
			Kind:  model.KindText,
			Patterns: []FieldPattern{
				{Name: "date range", Regex: `collection\s+period\s*:?\s*(?:from\s+)?(` + dateExpr + `\s*(?:-|–|to|through)\s*` + dateExpr + `)`},
				{Name: "ended", Regex: `collection\s+period\s*:?\s*(?:ended|ending)?\s*(` + dateExpr + `)`},
				{Name: "month", Regex: `collection\s+period\s*:?\s*(?:ended|ending|for)?\s*(` + monthExpr + `\.?\s+\d{4})`},
			},
		},
		{
			Field: "pool_balance",
			Kind:  model.KindCurrency,
			Patterns: []FieldPattern{
				{Name: "pool balance", Regex: `pool\s+balance[^$\n]{0,40}?` + amountCap},
				{Name: "receivables balance", Regex: `(?:aggregate|ending|outstanding)\s+(?:receivables|principal|collateral)\s+balance[^$\n]{0,40}?` + amountCap},
			},
		},
		{
			Field: "collections_amount",
			Kind:  model.KindCurrency,
			Patterns: []FieldPattern{
				{Name: "collections", Regex: `collections[^$\n]{0,40}?` + amountCap},
				{Name: "available funds", Regex: `available\s+(?:funds|amounts?)[^$\n]{0,40}?` + amountCap},
			},
		},
		{
			Field: "charge_offs_amount",
			Kind:  model.KindCurrency,
			Patterns: []FieldPattern{
				{Name: "charge-offs", Regex: `charge[- ]?offs?[^$\n]{0,40}?` + amountCap},
				{Name: "defaulted receivables", Regex: `defaulted\s+receivables[^$\n]{0,40}?` + amountCap},
			},
		},
		{
			Field: "delinquency_30",
			Kind:  model.KindPercentage,
			Patterns: []FieldPattern{
				{Name: "30 bucket", Regex: `(?:^|[^\d\-–])(?:30|31)\s*(?:-|–|to)\s*(?:59|60)\s+days?[^%\n]{0,40}?` + pctCap},
				{Name: "30 plus", Regex: `(?:^|[^\d\-–])30\+?\s*days?\s+(?:past\s+due|delinquen\w*)[^%\n]{0,40}?` + pctCap},
			},
		},
		{
			Field: "delinquency_60",
			Kind:  model.KindPercentage,
			Patterns: []FieldPattern{
				{Name: "60 bucket", Regex: `(?:^|[^\d\-–])(?:60|61)\s*(?:-|–|to)\s*(?:89|90)\s+days?[^%\n]{0,40}?` + pctCap},
				{Name: "60 plus", Regex: `(?:^|[^\d\-–])60\+?\s*days?\s+(?:past\s+due|delinquen\w*)[^%\n]{0,40}?` + pctCap},
			},
		},
		{
			Field: "delinquency_90",
			Kind:  model.KindPercentage,
			Patterns: []FieldPattern{
				{Name: "90 plus", Regex: `(?:^|[^\d\-–])(?:90|91)\s*(?:\+|plus)?\s*(?:(?:-|–|to)\s*\d{2,3}\s*)?days?(?:\s+or\s+more)?(?:\s+(?:past\s+due|delinquen\w*))?[^%\n]{0,40}?` + pctCap},
			},
		},
		{
			Field: "cumulative_losses",
			Kind:  model.KindCurrency,
			Patterns: []FieldPattern{
				{Name: "cumulative losses", Regex: `cumulative\s+(?:net\s+)?loss(?:es)?[^$%\n]{0,40}?` + amountCap},
			},
		},
		{
			Field: "loss_rate",
			Kind:  model.KindPercentage,
			Patterns: []FieldPattern{
				{Name: "loss ratio", Regex: `(?:cumulative\s+(?:net\s+)?|net\s+)?loss\s+(?:rate|ratio|percentage)[^%\n]{0,40}?` + pctCap},
				{Name: "annualized", Regex: `annualized\s+(?:net\s+)?(?:loss(?:es)?|charge[- ]?offs?)[^%\n]{0,30}?` + pctCap},
			},
		},
		{
			Field: "prepayment_rate",
			Kind:  model.KindPercentage,
			Patterns: []FieldPattern{
				{Name: "prepayment", Regex: `prepayment\s+(?:rate|speed)[^%\n]{0,30}?` + pctCap},
				{Name: "cpr", Regex: `\b(?:CPR|SMM)\b[^%\n]{0,20}?` + pctCap},
			},
		},
		{
			Field: "credit_enhancement_level",
			Kind:  model.KindPercentage,
			Patterns: []FieldPattern{
				{Name: "credit enhancement", Regex: `(?:total\s+)?(?:hard\s+)?credit\s+enhancement[^%\n]{0,40}?` + pctCap},
			},
		},
		{
			Field:   "covenant_compliance",
			Kind:    model.KindText,
			Default: "Unknown",
			Patterns: []FieldPattern{
				{Name: "status", Regex: `(?:covenant|trigger)s?(?:\s+(?:compliance|status|tests?))?\s*:?\s*(not\s+in\s+compliance|in\s+compliance|compliant|not\s+met|met|passed|pass|failed|fail|breached|breach|satisfied)\b`},
				{Name: "no breach", Regex: `\b(no\s+(?:trigger|covenant)\s+(?:breach|event)s?)\b`},
			},
		},
	}
}

func defaultNoteClassRules() []ExtractionRule {
	return []ExtractionRule{
		{
			Field: "original_balance",
			Kind:  model.KindCurrency,
			Patterns: []FieldPattern{
				{Name: "original balance", Regex: `(?:original|initial)\s+(?:principal\s+|note\s+)?(?:balance|amount)\s*:?\s*` + balanceCap},
				{Name: "principal amount", Regex: `principal\s+amount\s*:?\s*(?:of\s+)?` + balanceCap},
				{Name: "first dollar amount", Regex: amountCap},
				{Name: "first large number", Regex: `\b(` + bareExpr + `)\b`},
			},
		},
		{
			Field: "current_balance",
			Kind:  model.KindCurrency,
			Patterns: []FieldPattern{
				{Name: "current balance", Regex: `(?:current|outstanding|ending|remaining)\s+(?:principal\s+|note\s+)?(?:balance|amount)\s*:?\s*` + balanceCap},
			},
		},
		{
			Field: "interest_rate",
			Kind:  model.KindPercentage,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `(?:interest\s+rate|coupon|note\s+rate)\s*:?\s*(?:of\s+)?` + pctCap},
				{Name: "first percent", Regex: pctCap},
			},
		},
		{
			Field: "expected_maturity",
			Kind:  model.KindDate,
			Patterns: []FieldPattern{
				{Name: "expected", Regex: `(?:expected\s+(?:final\s+)?(?:maturity|payment|distribution)(?:\s+date)?|expected\s+final|final\s+scheduled\s+(?:distribution|payment)\s+date|\bdue)\s*:?\s*(?:on\s+)?` + dateCap},
				{Name: "first date", Regex: dateCap},
			},
		},
		{
			Field: "legal_final_maturity",
			Kind:  model.KindDate,
			Patterns: []FieldPattern{
				{Name: "legal final", Regex: `legal\s+final(?:\s+(?:maturity|payment|distribution))?(?:\s+date)?\s*:?\s*` + dateCap},
			},
		},
		{
			Field: "rating",
			Kind:  model.KindText,
			Patterns: []FieldPattern{
				{Name: "labelled", Regex: `(?:ratings?|rated)\s*:?\s*(?:of\s+)?(?:\w+\s+)?(` + ratingTok + `)(?:$|[\s),;/.])`},
				{Name: "first rating token", Regex: ratingCap},
			},
		},
		{
			Field: "enhancement_level",
			Kind:  model.KindPercentage,
			Patterns: []FieldPattern{
				{Name: "enhancement", Regex: `(?:credit\s+enhancement|enhancement|subordination|hard\s+CE)[^%\n]{0,30}?` + pctCap},
			},
		},
	}
}

func defaultClassDiscovery() []StructuralPattern {
	return []StructuralPattern{
		{Name: "table row", Confidence: 90, Regex: `\bClass\s+` + keyedIDCap + `(?:\s+Notes?)?\s*[|:]?\s*(?:US\$|\$|USD)?\s?\d{1,3}(?:,\d{3}){2,}`},
		{Name: "class notes", Confidence: 80, Regex: `\bClass\s+` + keyedIDCap + `\s+Notes?\b`},
		{Name: "id class notes", Confidence: 75, Regex: `\b` + classIDCap + `\s+Class\s+Notes?\b`},
		{Name: "series notes", Confidence: 70, Regex: `\bSeries\s+` + keyedIDCap + `\s+Notes?\b`},
		{Name: "note class", Confidence: 70, Regex: `\bNote\s+Class\s+` + shortIDCap + `\b`},
		{Name: "class securities", Confidence: 65, Regex: `\bClass\s+` + keyedIDCap + `\s+(?:Securities|Certificates)\b`},
		{Name: "tranche", Confidence: 60, Regex: `\bTranche\s+` + shortIDCap + `\b`},
	}
}

func defaultClassCount() []FieldPattern {
	return []FieldPattern{
		{Name: "classes of notes", Regex: `\b(one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|\d{1,2})\s+classes\s+of\s+(?:notes|certificates|securities)\b`},
	}
}

func defaultSectorKeywords() []SectorKeyword {
	return []SectorKeyword{
		{Keyword: "equipment", Sector: "Equipment ABS"},
		{Keyword: "auto", Sector: "Auto ABS"},
		{Keyword: "automobile", Sector: "Auto ABS"},
		{Keyword: "motor vehicle", Sector: "Auto ABS"},
		{Keyword: "credit card", Sector: "Credit Card ABS"},
		{Keyword: "student", Sector: "Student Loan ABS"},
		{Keyword: "fleet", Sector: "Fleet Lease ABS"},
		{Keyword: "floorplan", Sector: "Dealer Floorplan ABS"},
		{Keyword: "timeshare", Sector: "Timeshare ABS"},
		{Keyword: "solar", Sector: "Solar ABS"},
		{Keyword: "aircraft", Sector: "Aircraft ABS"},
		{Keyword: "device payment", Sector: "Device Payment ABS"},
		{Keyword: "consumer loan", Sector: "Consumer Loan ABS"},
		{Keyword: "mortgage", Sector: "Mortgage ABS"},
	}
}

func defaultNewIssueVocabulary() Vocabulary {
	return Vocabulary{
		Type: model.DocumentNewIssue,
		Terms: map[string]int{
			"offering memorandum":   3,
			"offering":              1,
			"prospectus":            3,
			"preliminary":           2,
			"term sheet":            3,
			"new issue":             3,
			"presale":               3,
			"pre-sale":              3,
			"closing date":          2,
			"expected ratings":      2,
			"underwriter":           2,
			"capital structure":     2,
			"transaction structure": 2,
			"advance rate":          2,
			"initial pool":          2,
			"offered notes":         2,
			"use of proceeds":       2,
			"risk factors":          1,
		},
		Bonuses: []Bonus{
			{AllOf: []string{"table of contents", "offering"}, Points: 5},
			{AllOf: []string{"risk factors", "prospectus"}, Points: 5},
			{AllOf: []string{"expected ratings", "closing date"}, Points: 3},
		},
	}
}

func defaultSurveillanceVocabulary() Vocabulary {
	return Vocabulary{
		Type: model.DocumentSurveillance,
		Terms: map[string]int{
			"collections":          3,
			"charge-off":           3,
			"charge off":           3,
			"chargeoff":            3,
			"delinquen":            2,
			"pool balance":         2,
			"distribution date":    2,
			"collection period":    3,
			"servicer report":      3,
			"servicer's report":    3,
			"servicer certificate": 3,
			"monthly report":       2,
			"investor report":      3,
			"surveillance":         3,
			"remittance":           2,
			"prepayment":           1,
			"cumulative loss":      2,
			"ending balance":       1,
			"beginning balance":    1,
			"current period":       2,
		},
		Bonuses: []Bonus{
			{AllOf: []string{"distribution date", "collection period"}, Points: 5},
			{AllOf: []string{"delinquen", "charge-off"}, Points: 3},
		},
	}
}
