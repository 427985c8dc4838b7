package megaverse

// GoalResponse is the body of GET /map/{candidateId}/goal.
type GoalResponse struct {
	Goal GoalGrid `json:"goal"`
}

// MapResponse is the body of GET /map/{candidateId}.
type MapResponse struct {
	Map MapContent `json:"map"`
}

// MapContent wraps the current grid with the metadata the API attaches to it.
type MapContent struct {
	ID          string      `json:"_id,omitempty"`
	Content     CurrentGrid `json:"content"`
	CandidateID string      `json:"candidateId,omitempty"`
	Phase       int         `json:"phase,omitempty"`
}
