package typeconfig

import "fieldlens/internal/domain"

// Builtins returns the compiled-in document type configurations in priority
// order. Tax forms come first: when classification scores tie, the more
// specific type wins.
func Builtins() []*DocumentTypeConfig {
	return []*DocumentTypeConfig{
		wageStatement(),
		contractorPayment(),
		payStub(),
		receipt(),
		bankStatement(),
		generic(),
	}
}

func wageStatement() *DocumentTypeConfig {
	return &DocumentTypeConfig{
		ID:          domain.TypeWageStatement,
		DisplayName: "W-2 Wage and Tax Statement",
		Keywords: []Keyword{
			{Term: "w-2", Weight: 4, Required: true},
			{Term: "wage and tax statement", Weight: 4},
			{Term: "social security wages", Weight: 1},
			{Term: "medicare wages", Weight: 1},
		},
		Fields: []FieldSpec{
			{Name: "employee_name", Kind: domain.KindString},
			{Name: "employee_ssn", Kind: domain.KindSSN},
			{Name: "employer_name", Kind: domain.KindString},
			{Name: "employer_ein", Kind: domain.KindEIN},
			{Name: "wages_tips", Kind: domain.KindMoney},
			{Name: "federal_tax_withheld", Kind: domain.KindMoney},
			{Name: "social_security_wages", Kind: domain.KindMoney},
			{Name: "social_security_tax", Kind: domain.KindMoney},
			{Name: "medicare_wages", Kind: domain.KindMoney},
			{Name: "medicare_tax", Kind: domain.KindMoney},
			{Name: "tax_year", Kind: domain.KindString},
			{Name: "box_12a", Kind: domain.KindString},
			{Name: "box_12b", Kind: domain.KindString},
		},
		RequiredFields: []string{"employee_ssn", "employer_ein", "wages_tips", "federal_tax_withheld", "tax_year"},
		Queries: []Query{
			{Text: "What is the employee's social security number?", Alias: "employee_ssn"},
			{Text: "What is the employee's name?", Alias: "employee_name"},
			{Text: "What is the employer's name?", Alias: "employer_name"},
			{Text: "What is the employer identification number (EIN)?", Alias: "employer_ein"},
			{Text: "What are the wages, tips, and other compensation in box 1?", Alias: "wages_tips"},
			{Text: "What is the federal income tax withheld in box 2?", Alias: "federal_tax_withheld"},
			{Text: "What are the social security wages in box 3?", Alias: "social_security_wages"},
			{Text: "What is the social security tax withheld in box 4?", Alias: "social_security_tax"},
			{Text: "What are the medicare wages and tips in box 5?", Alias: "medicare_wages"},
			{Text: "What is the medicare tax withheld in box 6?", Alias: "medicare_tax"},
			{Text: "What tax year is this form for?", Alias: "tax_year"},
		},
		PromptPreamble: "The document is a United States W-2 Wage and Tax Statement. Box numbers identify fields: box 1 is wages, box 2 is federal income tax withheld, boxes 3-6 cover social security and medicare amounts.",
		PatternRules: []PatternRule{
			{Field: "employee_ssn", Expr: `\b(\d{3}-\d{2}-\d{4})\b`, Group: 1, Confidence: 0.55},
			{Field: "employer_ein", Expr: `\b(\d{2}-\d{7})\b`, Group: 1, Confidence: 0.55},
			{Field: "tax_year", Expr: `\b(20\d{2})\b`, Group: 1, Confidence: 0.4},
			{Field: "box_12a", AfterLabel: "12a", Expr: `([A-Z]{1,2}\s+[\d,]+\.?\d*)`, Group: 1, Confidence: 0.45},
			{Field: "box_12b", AfterLabel: "12b", Expr: `([A-Z]{1,2}\s+[\d,]+\.?\d*)`, Group: 1, Confidence: 0.45},
		},
	}
}

func contractorPayment() *DocumentTypeConfig {
	return &DocumentTypeConfig{
		ID:          domain.TypeContractorPayment,
		DisplayName: "1099-NEC Nonemployee Compensation",
		Keywords: []Keyword{
			{Term: "1099", Weight: 4, Required: true},
			{Term: "nonemployee compensation", Weight: 4},
			{Term: "payer's tin", Weight: 1},
			{Term: "recipient's tin", Weight: 1},
		},
		Fields: []FieldSpec{
			{Name: "payer_name", Kind: domain.KindString},
			{Name: "payer_tin", Kind: domain.KindEIN},
			{Name: "recipient_name", Kind: domain.KindString},
			{Name: "recipient_tin", Kind: domain.KindSSN},
			{Name: "nonemployee_compensation", Kind: domain.KindMoney},
			{Name: "federal_tax_withheld", Kind: domain.KindMoney},
			{Name: "tax_year", Kind: domain.KindString},
		},
		RequiredFields: []string{"payer_tin", "recipient_tin", "nonemployee_compensation"},
		Queries: []Query{
			{Text: "What is the payer's name?", Alias: "payer_name"},
			{Text: "What is the payer's TIN?", Alias: "payer_tin"},
			{Text: "What is the recipient's name?", Alias: "recipient_name"},
			{Text: "What is the recipient's TIN?", Alias: "recipient_tin"},
			{Text: "What is the nonemployee compensation in box 1?", Alias: "nonemployee_compensation"},
			{Text: "What is the federal income tax withheld in box 4?", Alias: "federal_tax_withheld"},
			{Text: "What tax year is this form for?", Alias: "tax_year"},
		},
		PromptPreamble: "The document is a United States 1099-NEC form reporting nonemployee compensation paid to a contractor.",
		PatternRules: []PatternRule{
			{Field: "payer_tin", Expr: `\b(\d{2}-\d{7})\b`, Group: 1, Confidence: 0.55},
			{Field: "recipient_tin", Expr: `\b(\d{3}-\d{2}-\d{4})\b`, Group: 1, Confidence: 0.55},
			{Field: "tax_year", Expr: `\b(20\d{2})\b`, Group: 1, Confidence: 0.4},
		},
	}
}

func payStub() *DocumentTypeConfig {
	return &DocumentTypeConfig{
		ID:          domain.TypePayStub,
		DisplayName: "Pay Stub",
		Keywords: []Keyword{
			{Term: "earnings statement", Weight: 3},
			{Term: "pay period", Weight: 2},
			{Term: "gross pay", Weight: 2},
			{Term: "net pay", Weight: 2},
			{Term: "ytd", Weight: 1},
		},
		Fields: []FieldSpec{
			{Name: "employee_name", Kind: domain.KindString},
			{Name: "employer_name", Kind: domain.KindString},
			{Name: "pay_date", Kind: domain.KindDate},
			{Name: "pay_period_start", Kind: domain.KindDate},
			{Name: "pay_period_end", Kind: domain.KindDate},
			{Name: "gross_current", Kind: domain.KindMoney},
			{Name: "deduction_total_current", Kind: domain.KindMoney},
			{Name: "net_current", Kind: domain.KindMoney},
			{Name: "gross_ytd", Kind: domain.KindMoney},
			{Name: "net_ytd", Kind: domain.KindMoney},
		},
		RequiredFields: []string{"employee_name", "pay_period_start", "pay_period_end", "gross_current", "net_current"},
		Queries: []Query{
			{Text: "What is the employee's name?", Alias: "employee_name"},
			{Text: "What is the employer's name?", Alias: "employer_name"},
			{Text: "What is the pay date?", Alias: "pay_date"},
			{Text: "What is the pay period start date?", Alias: "pay_period_start"},
			{Text: "What is the pay period end date?", Alias: "pay_period_end"},
			{Text: "What is the current gross pay?", Alias: "gross_current"},
			{Text: "What is the total of current deductions?", Alias: "deduction_total_current"},
			{Text: "What is the current net pay?", Alias: "net_current"},
			{Text: "What is the year to date gross pay?", Alias: "gross_ytd"},
			{Text: "What is the year to date net pay?", Alias: "net_ytd"},
		},
		PromptPreamble: "The document is an employee pay stub with current and year-to-date earnings, deductions, and net pay. Dates must be returned in YYYY-MM-DD form.",
		PatternRules: []PatternRule{
			{Field: "net_current", Expr: `(?i)net\s+pay[:\s]+\$?([\d,]+\.?\d*)`, Group: 1, Confidence: 0.5},
			{Field: "gross_current", Expr: `(?i)gross\s+pay[:\s]+\$?([\d,]+\.?\d*)`, Group: 1, Confidence: 0.5},
		},
		TableRules: TableRules{
			EarningTerms:   []string{"regular", "overtime", "bonus", "commission", "holiday", "pto", "salary", "vacation"},
			DeductionTerms: []string{"tax", "insurance", "401k", "medicare", "social security", "dental", "vision", "garnish", "hsa"},
		},
		Identities: []ArithmeticIdentity{
			{Name: "net pay", Plus: []string{"gross_current"}, Minus: []string{"deduction_total_current"}, Equals: "net_current"},
		},
		Orderings: []DateOrdering{
			{Earlier: "pay_period_start", Later: "pay_period_end"},
		},
	}
}

func receipt() *DocumentTypeConfig {
	return &DocumentTypeConfig{
		ID:          domain.TypeReceipt,
		DisplayName: "Receipt",
		Keywords: []Keyword{
			{Term: "receipt", Weight: 3},
			{Term: "subtotal", Weight: 2},
			{Term: "change due", Weight: 2},
			{Term: "cashier", Weight: 1},
			{Term: "tax", Weight: 1},
			{Term: "total", Weight: 1},
		},
		Fields: []FieldSpec{
			{Name: "merchant_name", Kind: domain.KindString},
			{Name: "transaction_date", Kind: domain.KindDate},
			{Name: "subtotal", Kind: domain.KindMoney},
			{Name: "tax", Kind: domain.KindMoney},
			{Name: "total", Kind: domain.KindMoney},
			{Name: "payment_method", Kind: domain.KindString},
		},
		RequiredFields: []string{"merchant_name", "transaction_date", "total"},
		Queries: []Query{
			{Text: "What is the merchant or store name?", Alias: "merchant_name"},
			{Text: "What is the transaction date?", Alias: "transaction_date"},
			{Text: "What is the subtotal before tax?", Alias: "subtotal"},
			{Text: "What is the tax amount?", Alias: "tax"},
			{Text: "What is the total amount?", Alias: "total"},
			{Text: "What payment method was used?", Alias: "payment_method"},
		},
		PromptPreamble: "The document is a purchase receipt. Extract the merchant, date, amounts, and payment method. Dates must be returned in YYYY-MM-DD form.",
		PatternRules: []PatternRule{
			{Field: "total", Expr: `(?i)\btotal[:\s]+\$?([\d,]+\.\d{2})`, Group: 1, Confidence: 0.5},
			{Field: "subtotal", Expr: `(?i)subtotal[:\s]+\$?([\d,]+\.\d{2})`, Group: 1, Confidence: 0.5},
			{Field: "tax", Expr: `(?i)\btax[:\s]+\$?([\d,]+\.\d{2})`, Group: 1, Confidence: 0.5},
		},
		Identities: []ArithmeticIdentity{
			{Name: "receipt total", Plus: []string{"subtotal", "tax"}, Equals: "total"},
		},
		LineItemSumField: "subtotal",
	}
}

func bankStatement() *DocumentTypeConfig {
	return &DocumentTypeConfig{
		ID:          domain.TypeBankStatement,
		DisplayName: "Bank Statement",
		Keywords: []Keyword{
			{Term: "statement period", Weight: 3},
			{Term: "beginning balance", Weight: 2},
			{Term: "ending balance", Weight: 2},
			{Term: "deposits", Weight: 1},
			{Term: "withdrawals", Weight: 1},
			{Term: "account number", Weight: 1},
		},
		Fields: []FieldSpec{
			{Name: "bank_name", Kind: domain.KindString},
			{Name: "account_holder", Kind: domain.KindString},
			{Name: "account_number", Kind: domain.KindString},
			{Name: "period_start", Kind: domain.KindDate},
			{Name: "period_end", Kind: domain.KindDate},
			{Name: "beginning_balance", Kind: domain.KindMoney},
			{Name: "total_credits", Kind: domain.KindMoney},
			{Name: "total_debits", Kind: domain.KindMoney},
			{Name: "ending_balance", Kind: domain.KindMoney},
		},
		RequiredFields: []string{"account_number", "period_start", "period_end", "beginning_balance", "ending_balance"},
		Queries: []Query{
			{Text: "What is the bank's name?", Alias: "bank_name"},
			{Text: "What is the account holder's name?", Alias: "account_holder"},
			{Text: "What is the account number?", Alias: "account_number"},
			{Text: "What is the statement period start date?", Alias: "period_start"},
			{Text: "What is the statement period end date?", Alias: "period_end"},
			{Text: "What is the beginning balance?", Alias: "beginning_balance"},
			{Text: "What is the total of deposits and credits?", Alias: "total_credits"},
			{Text: "What is the total of withdrawals and debits?", Alias: "total_debits"},
			{Text: "What is the ending balance?", Alias: "ending_balance"},
		},
		PromptPreamble: "The document is a bank account statement with a statement period, balances, and a transaction table. Dates must be returned in YYYY-MM-DD form.",
		PatternRules: []PatternRule{
			{Field: "beginning_balance", Expr: `(?i)beginning\s+balance[:\s]+\$?([\d,]+\.\d{2})`, Group: 1, Confidence: 0.5},
			{Field: "ending_balance", Expr: `(?i)ending\s+balance[:\s]+\$?([\d,]+\.\d{2})`, Group: 1, Confidence: 0.5},
		},
		TableRules: TableRules{Transactions: true},
		Identities: []ArithmeticIdentity{
			{Name: "ending balance", Plus: []string{"beginning_balance", "total_credits"}, Minus: []string{"total_debits"}, Equals: "ending_balance"},
		},
		Orderings: []DateOrdering{
			{Earlier: "period_start", Later: "period_end"},
		},
	}
}

// generic is the fallback configuration used when classification returns
// unknown. It carries no keywords and never wins classification.
func generic() *DocumentTypeConfig {
	return &DocumentTypeConfig{
		ID:          domain.TypeUnknown,
		DisplayName: "Unclassified Document",
		Fields: []FieldSpec{
			{Name: "document_date", Kind: domain.KindDate},
			{Name: "total", Kind: domain.KindMoney},
			{Name: "issuer_name", Kind: domain.KindString},
		},
		Queries: []Query{
			{Text: "What is the document date?", Alias: "document_date"},
			{Text: "What is the total or primary amount?", Alias: "total"},
			{Text: "What organization issued this document?", Alias: "issuer_name"},
		},
		PromptPreamble: "The document type is unknown. Extract whatever of the listed fields are present. Dates must be returned in YYYY-MM-DD form.",
		PatternRules: []PatternRule{
			{Field: "total", Expr: `(?i)\btotal[:\s]+\$?([\d,]+\.\d{2})`, Group: 1, Confidence: 0.4},
			{Field: "document_date", Expr: `\b(\d{4}-\d{2}-\d{2})\b`, Group: 1, Confidence: 0.4},
		},
	}
}
