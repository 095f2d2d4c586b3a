package entities

// DescriptionRequest carries the facility fields handed to the AI
// description generator. Pure enrichment input; no effect on stored state.
type DescriptionRequest struct {
	Name          string   `json:"name"`
	TypeName      string   `json:"type_name"`
	Address       string   `json:"address"`
	OpenTime      string   `json:"open_time"`
	CloseTime     string   `json:"close_time"`
	SubFacilities []string `json:"sub_facilities"`
}
