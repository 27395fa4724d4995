package postgres

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const getUser = `-- name: GetUser :one
SELECT id, username, domain, survey_text, self_summary, skills, telegram_user_id, created_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Domain,
		&i.SurveyText,
		&i.SelfSummary,
		&i.Skills,
		&i.TelegramUserID,
		&i.CreatedAt,
	)
	return i, err
}

const getUserByTelegramID = `-- name: GetUserByTelegramID :one
SELECT id, username, domain, survey_text, self_summary, skills, telegram_user_id, created_at
FROM users
WHERE telegram_user_id = $1
`

func (q *Queries) GetUserByTelegramID(ctx context.Context, telegramUserID sql.NullInt64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByTelegramID, telegramUserID)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Domain,
		&i.SurveyText,
		&i.SelfSummary,
		&i.Skills,
		&i.TelegramUserID,
		&i.CreatedAt,
	)
	return i, err
}

const getLatestProjectByUser = `-- name: GetLatestProjectByUser :one
SELECT id, user_id, title, content, skills_used, results, created_at
FROM projects
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`

func (q *Queries) GetLatestProjectByUser(ctx context.Context, userID int64) (Project, error) {
	row := q.db.QueryRowContext(ctx, getLatestProjectByUser, userID)
	var i Project
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Title,
		&i.Content,
		&i.SkillsUsed,
		&i.Results,
		&i.CreatedAt,
	)
	return i, err
}

const getFirstJobByDomain = `-- name: GetFirstJobByDomain :one
SELECT id, company, title, description, domain, skills_required
FROM jobs
WHERE domain = $1
ORDER BY id
LIMIT 1
`

func (q *Queries) GetFirstJobByDomain(ctx context.Context, domain sql.NullString) (Job, error) {
	row := q.db.QueryRowContext(ctx, getFirstJobByDomain, domain)
	var i Job
	err := row.Scan(
		&i.ID,
		&i.Company,
		&i.Title,
		&i.Description,
		&i.Domain,
		&i.SkillsRequired,
	)
	return i, err
}
