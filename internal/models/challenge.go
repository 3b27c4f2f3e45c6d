package models

// ChallengeInput is the collection descriptor read by the batch analyzer
type ChallengeInput struct {
	ChallengeInfo ChallengeInfo      `json:"challenge_info"`
	Documents     []ChallengeDocument `json:"documents"`
	Persona       struct {
		Role string `json:"role"`
	} `json:"persona"`
	JobToBeDone struct {
		Task string `json:"task"`
	} `json:"job_to_be_done"`
}

// ChallengeInfo identifies a test collection
type ChallengeInfo struct {
	ChallengeID  string `json:"challenge_id"`
	TestCaseName string `json:"test_case_name"`
	Description  string `json:"description,omitempty"`
}

// ChallengeDocument names one input file of a collection
type ChallengeDocument struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}
