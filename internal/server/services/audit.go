package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/taskboard/internal/common"
	sc "github.com/dmitrijs2005/taskboard/internal/server/config"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	MaxAuditListLimit = 500
	exportLimit       = 10000
	exportURLExpiry   = 15 * time.Minute
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	presignGetObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignGetObject(ctx, in, optFns...)
	}
)

// ExportResult points at an uploaded audit-log export.
type ExportResult struct {
	Key   string
	URL   string
	Count int
}

// AuditService appends audit rows for any signed-in caller and serves the
// trail to administrators.
type AuditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	now         func() time.Time
}

func NewAuditService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *AuditService {
	return &AuditService{db: db, repomanager: m, config: cfg, now: time.Now}
}

// Insert stores e on behalf of caller. The user id always comes from the
// caller; CreatedAt supplied by the client is kept.
func (s *AuditService) Insert(ctx context.Context, caller models.Caller, e *models.AuditLogEntry) (*models.AuditLogEntry, error) {
	if strings.TrimSpace(e.Action) == "" {
		return nil, validationError("action is required")
	}
	if len(e.Details) > 0 {
		var obj map[string]any
		if err := json.Unmarshal(e.Details, &obj); err != nil {
			return nil, validationError("details must be a JSON object")
		}
	}

	row := *e
	row.UserID = caller.UserID
	if row.Username == "" {
		row.Username = "Unknown"
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = s.now()
	}
	return s.repomanager.AuditLogs(s.db).Create(ctx, &row)
}

func (s *AuditService) List(ctx context.Context, caller models.Caller, filter models.AuditFilter) ([]*models.AuditLogEntry, error) {
	if !caller.IsAdmin() {
		return nil, common.ErrorForbidden
	}
	if filter.Limit <= 0 || filter.Limit > MaxAuditListLimit {
		filter.Limit = MaxAuditListLimit
	}
	return s.repomanager.AuditLogs(s.db).List(ctx, filter)
}

type exportRecord struct {
	ID         int64           `json:"id"`
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	Action     string          `json:"action"`
	EntityType *string         `json:"entity_type"`
	EntityID   *string         `json:"entity_id"`
	Details    json.RawMessage `json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}

func exportKey(now time.Time) string {
	return fmt.Sprintf("audit/%d/%02d/%02d/%v.json", now.Year(), now.Month(), now.Day(), uuid.New())
}

func (s *AuditService) s3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Export uploads the (optionally action-filtered) audit trail as a JSON
// array to object storage and returns a presigned download URL.
func (s *AuditService) Export(ctx context.Context, caller models.Caller, action string) (*ExportResult, error) {
	if !caller.IsAdmin() {
		return nil, common.ErrorForbidden
	}

	entries, err := s.repomanager.AuditLogs(s.db).List(ctx, models.AuditFilter{Action: action, Limit: exportLimit})
	if err != nil {
		return nil, err
	}

	records := make([]exportRecord, 0, len(entries))
	for _, e := range entries {
		details := e.Details
		if len(details) == 0 {
			details = json.RawMessage("{}")
		}
		records = append(records, exportRecord{
			ID: e.ID, UserID: e.UserID, Username: e.Username, Action: e.Action,
			EntityType: e.EntityType, EntityID: e.EntityID, Details: details, CreatedAt: e.CreatedAt,
		})
	}
	body, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	bucket := s.config.S3Bucket
	key := exportKey(s.now())

	if err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	req, err := presignGetObject(client, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(exportURLExpiry))
	if err != nil {
		return nil, fmt.Errorf("s3 presign: %w", err)
	}

	return &ExportResult{Key: key, URL: req.URL, Count: len(records)}, nil
}
