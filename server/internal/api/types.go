package api

// EstimateRequest is the JSON body accepted by POST /api/v1/estimate.
// The form-encoded variant uses the same field names with a repeated
// "reason" field instead of the reasons array.
type EstimateRequest struct {
	Age              int      `json:"age"`
	Weight           int      `json:"weight"`
	HeightFeet       int      `json:"height_feet"`
	HeightInches     int      `json:"height_inches"`
	EggSource        string   `json:"egg_source"`
	IVFCycles        int      `json:"ivf_cycles"`
	Reasons          []string `json:"reasons"`
	PriorPregnancies string   `json:"prior_pregnancies"`
	PriorBirths      string   `json:"prior_births"`
}

// EstimateResponse is the payload for a successful estimate.
type EstimateResponse struct {
	RequestID   string           `json:"request_id"`
	SuccessRate string           `json:"success_rate"` // percent, 2 places
	BMI         string           `json:"bmi"`          // 2 places
	BMICategory string           `json:"bmi_category"`
	Score       string           `json:"score"`
	Formula     FormulaResponse  `json:"formula"`
	Breakdown   []Contribution   `json:"breakdown"`
	Hints       []DiagnosticHint `json:"hints"`
}

// FormulaResponse identifies one table row by its raw selection cells.
type FormulaResponse struct {
	Index        int    `json:"index"`
	Label        string `json:"label,omitempty"`
	UsingOwnEggs string `json:"using_own_eggs"`
	AttemptedIVF string `json:"attempted_ivf_previously"`
	ReasonKnown  string `json:"is_reason_for_infertility_known"`
}

// Contribution is one additive term of the score.
type Contribution struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// FormulasResponse is the payload for GET /api/v1/formulas.
type FormulasResponse struct {
	Count    int               `json:"count"`
	Formulas []FormulaResponse `json:"formulas"`
}

// ReasonsResponse is the payload for GET /api/v1/reasons.
type ReasonsResponse struct {
	Reasons  []string `json:"reasons"`
	NoReason string   `json:"no_reason"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status      string `json:"status"`
	FormulaRows int    `json:"formula_rows"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
