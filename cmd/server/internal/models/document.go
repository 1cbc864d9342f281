package models

type Document struct {
	Model
	ChallengeID  int64
	Path         string
	FileName     string
	Downloadable bool
}

func (Document) TableName() string {
	return "document"
}

func (d Document) GetID() int64 {
	return d.ID
}
