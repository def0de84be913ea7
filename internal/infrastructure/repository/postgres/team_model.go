package postgres

type teamTableModel struct {
	ID            string `db:"id"`
	CompetitionID string `db:"competition_id"`
	Name          string `db:"name"`
	ShortName     string `db:"short_name"`
	Code          string `db:"code"`
	CrestURL      string `db:"crest_url"`
}
