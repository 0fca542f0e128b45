package model

// ─── Public display shape ───────────────────────────────────

const dateLayout = "2006-01-02"

// OccurrenceView is the JSON shape returned to clients for one departure.
// The recommendation engine fills MatchScore, MatchDetails and IsRelaxed.
type OccurrenceView struct {
	ID                    int64            `json:"id"`
	TemplateID            int64            `json:"template_id"`
	StartDate             string           `json:"start_date"`
	EndDate               string           `json:"end_date"`
	DurationDays          int              `json:"duration_days"`
	Price                 float64          `json:"price"`
	SingleSupplementPrice *float64         `json:"single_supplement_price,omitempty"`
	MaxCapacity           int              `json:"max_capacity"`
	SpotsLeft             int              `json:"spots_left"`
	Status                OccurrenceStatus `json:"status"`
	Guide                 *Guide           `json:"guide,omitempty"`

	Title                string    `json:"title"`
	TitleLocalized       string    `json:"title_localized,omitempty"`
	Description          string    `json:"description"`
	DescriptionLocalized string    `json:"description_localized,omitempty"`
	ImageURL             string    `json:"image_url,omitempty"`
	CompanyID            int64     `json:"company_id"`
	DifficultyLevel      int       `json:"difficulty_level"`
	Country              *Country  `json:"country,omitempty"`
	Countries            []Country `json:"countries"`
	TripType             *TripType `json:"trip_type,omitempty"`
	Tags                 []Tag     `json:"tags"`

	MatchScore   float64  `json:"match_score"`
	MatchDetails []string `json:"match_details"`
	IsRelaxed    bool     `json:"is_relaxed"`
}

// NewOccurrenceView flattens an occurrence and its joined template into the
// display shape. Match fields are left zero.
func NewOccurrenceView(o *TripOccurrence) OccurrenceView {
	t := o.Template
	v := OccurrenceView{
		ID:                    o.ID,
		TemplateID:            o.TemplateID,
		StartDate:             o.StartDate.Format(dateLayout),
		EndDate:               o.EndDate.Format(dateLayout),
		DurationDays:          o.DurationDays(),
		Price:                 o.EffectivePrice(),
		SingleSupplementPrice: o.EffectiveSingleSupplement(),
		MaxCapacity:           o.EffectiveMaxCapacity(),
		SpotsLeft:             o.SpotsLeft,
		Status:                o.Status,
		Guide:                 o.Guide,

		Title:                t.Title,
		TitleLocalized:       t.TitleLocalized,
		Description:          t.Description,
		DescriptionLocalized: t.DescriptionLocalized,
		ImageURL:             t.ImageURL,
		CompanyID:            t.CompanyID,
		DifficultyLevel:      t.DifficultyLevel,
		Country:              t.PrimaryCountry,
		Countries:            t.AllCountries(),
		TripType:             t.TripType,
		Tags:                 t.Tags,
		MatchDetails:         []string{},
	}
	if v.Tags == nil {
		v.Tags = []Tag{}
	}
	return v
}
