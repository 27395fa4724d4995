package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mockinterview/analysis"
	"mockinterview/interview"
	"mockinterview/logger"

	_ "github.com/lib/pq"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned when no user matches the given identity.
var ErrUserNotFound = errors.New("user not found")

type DatabaseConnectProps struct {
	Logger *logger.LogMiddleware
	DSN    string
	// ConnectRetries bounds start-up attempts. Zero means 5.
	ConnectRetries int
	RetryDelay     time.Duration
}

type Database struct {
	Queries
	conn   *sql.DB
	logger *logger.LogMiddleware
}

func Connect(ctx context.Context, args DatabaseConnectProps) (*Database, error) {
	tracer := otel.Tracer("postgres/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	connectRetries := args.ConnectRetries
	if connectRetries <= 0 {
		connectRetries = 5
	}
	sleepTime := args.RetryDelay
	if sleepTime <= 0 {
		sleepTime = 5 * time.Second
	}

	logger := args.Logger.Logger(ctx)

	var conn *sql.DB
	var err error
	for connectRetries > 0 {
		conn, err = getConnection(ctx, args.DSN)
		if err == nil {
			logger.Info("[Postgres] Database client started")
			break
		}
		connectRetries -= 1
		logger.Error(
			"[Postgres] Could not connect to Postgres. Retrying after sleeping.",
			zap.Error(err),
			zap.Int("Retries Left", connectRetries),
			zap.Duration("Sleep Time", sleepTime))
		if connectRetries == 0 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepTime):
		}
	}

	if err != nil {
		logger.Error("[Postgres] Failed to Connect to Postgres")
		span.RecordError(err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return NewDatabase(conn, args.Logger), nil
}

// NewDatabase wraps an open connection.
func NewDatabase(conn *sql.DB, log *logger.LogMiddleware) *Database {
	return &Database{Queries: *New(conn), conn: conn, logger: log}
}

func getConnection(ctx context.Context, dsn string) (*sql.DB, error) {
	tracer := otel.Tracer("postgres/getConnection")
	ctx, span := tracer.Start(ctx, "getConnection")
	defer span.End()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		span.RecordError(err)
		db.Close()
		return nil, err
	}

	return db, nil
}

func (d *Database) Close() error {
	return d.conn.Close()
}

// UserProfile loads the profile for a user id.
func (d *Database) UserProfile(ctx context.Context, userID int64) (*interview.UserProfile, error) {
	tracer := otel.Tracer("postgres/UserProfile")
	ctx, span := tracer.Start(ctx, "UserProfile")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	user, err := d.Queries.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		span.RecordError(err)
		d.logger.Logger(ctx).Error("[Postgres] Could not load user", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	return toUserProfile(user), nil
}

// UserProfileByTelegramID loads the profile linked to a Telegram account.
func (d *Database) UserProfileByTelegramID(ctx context.Context, telegramUserID int64) (*interview.UserProfile, error) {
	tracer := otel.Tracer("postgres/UserProfileByTelegramID")
	ctx, span := tracer.Start(ctx, "UserProfileByTelegramID")
	defer span.End()
	span.SetAttributes(attribute.Int64("telegram_user.id", telegramUserID))

	user, err := d.Queries.GetUserByTelegramID(ctx, sql.NullInt64{Int64: telegramUserID, Valid: true})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		span.RecordError(err)
		d.logger.Logger(ctx).Error("[Postgres] Could not load telegram user", zap.Error(err), zap.Int64("telegram_user_id", telegramUserID))
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	return toUserProfile(user), nil
}

// LatestProject returns the user's most recently created project, or nil when they have none.
func (d *Database) LatestProject(ctx context.Context, userID int64) (*interview.Project, error) {
	tracer := otel.Tracer("postgres/LatestProject")
	ctx, span := tracer.Start(ctx, "LatestProject")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	project, err := d.Queries.GetLatestProjectByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		d.logger.Logger(ctx).Error("[Postgres] Could not load latest project", zap.Error(err), zap.Int64("user_id", userID))
		return nil, err
	}

	return &interview.Project{
		ID:         project.ID,
		UserID:     project.UserID,
		Title:      project.Title,
		Content:    project.Content.String,
		SkillsUsed: project.SkillsUsed.String,
		Results:    project.Results.String,
		CreatedAt:  project.CreatedAt,
	}, nil
}

// JobForDomain returns the first opening for domain, or nil when there is none.
func (d *Database) JobForDomain(ctx context.Context, domain string) (*analysis.Job, error) {
	tracer := otel.Tracer("postgres/JobForDomain")
	ctx, span := tracer.Start(ctx, "JobForDomain")
	defer span.End()
	span.SetAttributes(attribute.String("domain", domain))

	job, err := d.Queries.GetFirstJobByDomain(ctx, sql.NullString{String: domain, Valid: true})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		d.logger.Logger(ctx).Error("[Postgres] Could not load job", zap.Error(err), zap.String("domain", domain))
		return nil, err
	}

	return &analysis.Job{
		ID:             job.ID,
		Company:        job.Company,
		Title:          job.Title,
		Description:    job.Description,
		Domain:         job.Domain.String,
		SkillsRequired: job.SkillsRequired.String,
	}, nil
}

func toUserProfile(user User) *interview.UserProfile {
	return &interview.UserProfile{
		ID:          user.ID,
		Name:        user.Username,
		Domain:      user.Domain.String,
		SurveyText:  user.SurveyText.String,
		SelfSummary: user.SelfSummary.String,
		Skills:      user.Skills.String,
	}
}
