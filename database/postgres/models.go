package postgres

import (
	"database/sql"
	"time"
)

type User struct {
	ID             int64
	Username       string
	Domain         sql.NullString
	SurveyText     sql.NullString
	SelfSummary    sql.NullString
	Skills         sql.NullString
	TelegramUserID sql.NullInt64
	CreatedAt      time.Time
}

type Project struct {
	ID         int64
	UserID     int64
	Title      string
	Content    sql.NullString
	SkillsUsed sql.NullString
	Results    sql.NullString
	CreatedAt  time.Time
}

type Job struct {
	ID             int64
	Company        string
	Title          string
	Description    string
	Domain         sql.NullString
	SkillsRequired sql.NullString
}
