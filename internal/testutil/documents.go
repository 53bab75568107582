package testutil

// Document fixtures shared by engine, storage and command tests. Expected
// values asserted against them live next to the assertions.

// NewIssueProspectus is a compact preliminary prospectus with four note
// classes and every required new-issue field present.
const NewIssueProspectus = `PRELIMINARY PROSPECTUS SUPPLEMENT
Acme Auto Receivables Trust 2024-1
Issuer: Acme Auto Receivables Trust 2024-1
$1,000,000,000 Asset Backed Notes
Acme Auto Funding LLC, as depositor
Acme Financial Services Inc., as sponsor
Acme Financial Services Inc., as servicer
Wilmington Trust, National Association, as owner trustee
Closing Date: on or about May 15, 2024
Currency: USD
Expected Ratings: S&P and Moody's
The trust will issue four classes of notes.

Capital Structure

Class A-1 Notes $400,000,000 5.100% Expected Final: 03/15/2025 Legal Final: 04/15/2025 AAA(sf)
Class A-2 Notes $450,000,000 5.320% Expected Final: 06/15/2027 Legal Final: 08/15/2027 AAA(sf)
Class B Notes $100,000,000 5.600% Legal Final Maturity: 09/15/2030 AA(sf)
Class C Notes $50,000,000 6.100% A(sf)

Risk Factors
The receivables are motor vehicle retail installment sale contracts secured by new and used automobiles.
The expected cumulative net loss is 1.25% - 1.50%.
Reserve account equal to 0.50% of the initial pool balance.
Weighted average seasoning of 18 months.
`

// SurveillanceReport is a monthly servicer report without a class table.
const SurveillanceReport = `Monthly Servicer Report
Acme Auto Receivables Trust 2023-2
Collection Period: March 2024
Distribution Date: 04/15/2024
Collections for the month of $5,230,000 and Charge-offs of $120,000, Pool Balance $50,000,000
30-59 Days Delinquent: 1.20%
60-89 Days Delinquent: 0.45%
90+ Days Delinquent: 0.20%
Cumulative Net Loss Ratio: 0.85%
Trigger Status: Pass
`

// SurveillanceWithClasses is a servicer report that also lists class
// balances.
const SurveillanceWithClasses = SurveillanceReport + `
Note Balances
Class A Notes Original Balance: $400,000,000 Current Balance: $250,000,000 5.10% AAA(sf)
Class B Notes Original Balance: $50,000,000 Current Balance: $50,000,000 5.60% AA(sf)
`
