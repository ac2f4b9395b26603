package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/user/feed-service/internal/entity"
	"github.com/user/feed-service/internal/feed"
	"github.com/user/feed-service/internal/repository"
	"github.com/user/feed-service/pkg/metrics"
	"github.com/user/feed-service/pkg/utils"
)

var (
	ErrFeedRecentlyImported = errors.New("feed URL has been imported recently and force is false")
	ErrUnknownFormat        = errors.New("unknown feed format")
)

// maxFeedBytes caps a remote feed body. Aggregator feeds run to a few MB;
// anything past this is a misconfigured URL.
const maxFeedBytes = 50 << 20

// Importer defines the interface for the two import entry points: an
// uploaded file and a remote feed URL.
type Importer interface {
	ImportFile(ctx context.Context, ownerID string, xmlData []byte, publish, dryRun bool) (*entity.ImportResult, error)
	ImportURL(ctx context.Context, ownerID, feedURL, format string, publish, force, dryRun bool) (*entity.ImportResult, error)
}

type importerUseCase struct {
	properties repository.PropertyRepository
	guard      repository.FeedGuardRepository
	client     *http.Client
	guardTTL   time.Duration
}

// NewImporter creates the import use case. The HTTP client is used for
// remote feed fetches, attempt-once, with whatever timeout it carries.
func NewImporter(
	properties repository.PropertyRepository,
	guard repository.FeedGuardRepository,
	client *http.Client,
	guardTTL time.Duration,
) Importer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &importerUseCase{
		properties: properties,
		guard:      guard,
		client:     client,
		guardTTL:   guardTTL,
	}
}

// ImportFile parses an uploaded XML document, detects its dialect and
// persists every record. Malformed XML fails the whole operation with a
// single error; a per-record persistence failure is collected and the
// batch continues.
func (uc *importerUseCase) ImportFile(ctx context.Context, ownerID string, xmlData []byte, publish, dryRun bool) (*entity.ImportResult, error) {
	start := time.Now()

	doc, err := feed.ParseDocument(xmlData)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("unknown", "failure").Inc()
		return nil, err
	}

	parser := feed.ParserFor(feed.DetectDialect(doc))
	records := parser.Parse(doc)

	result := uc.persistRecords(ctx, ownerID, records, publish, dryRun)

	dialect := parser.Dialect().String()
	metrics.ImportsTotal.WithLabelValues(dialect, "success").Inc()
	metrics.ImportDuration.WithLabelValues(dialect).Observe(time.Since(start).Seconds())
	slog.Info("File import finished",
		"owner_id", ownerID,
		"dialect", dialect,
		"fetched", result.Fetched,
		"created", result.Created,
		"updated", result.Updated,
		"failed", len(result.Errors),
		"dry_run", dryRun,
	)
	return result, nil
}

// ImportURL fetches a remote feed and imports it. The format pins the
// dialect: "cnm" is the generic schema, "vrsync" is VivaReal. The Redis
// guard refuses a URL imported inside its window unless force is set.
func (uc *importerUseCase) ImportURL(ctx context.Context, ownerID, feedURL, format string, publish, force, dryRun bool) (*entity.ImportResult, error) {
	parser, err := parserForFormat(format)
	if err != nil {
		return nil, err
	}
	dialect := parser.Dialect().String()
	start := time.Now()

	if force {
		if err := uc.guard.Remove(ctx, feedURL); err != nil {
			slog.Warn("Failed to clear feed guard for forced import", "url", feedURL, "error", err)
			// Continue anyway, as this is not a critical failure
		}
	} else {
		recent, err := uc.guard.IsRecentlyImported(ctx, feedURL)
		if err != nil {
			return nil, fmt.Errorf("check feed guard: %w", err)
		}
		if recent {
			return nil, ErrFeedRecentlyImported
		}
	}

	body, err := uc.fetchFeed(ctx, feedURL)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(dialect, "failure").Inc()
		return nil, err
	}

	doc, err := feed.ParseDocument(body)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(dialect, "failure").Inc()
		return nil, err
	}

	records := parser.Parse(doc)
	absolutizePhotos(records, feedURL)

	result := uc.persistRecords(ctx, ownerID, records, publish, dryRun)

	if !dryRun {
		if err := uc.guard.MarkImported(ctx, feedURL, uc.guardTTL); err != nil {
			// Non-critical: the import succeeded, the URL just is not guarded.
			slog.Error("Failed to mark feed URL as imported", "url", feedURL, "error", err)
		}
	}

	metrics.ImportsTotal.WithLabelValues(dialect, "success").Inc()
	metrics.ImportDuration.WithLabelValues(dialect).Observe(time.Since(start).Seconds())
	slog.Info("URL import finished",
		"owner_id", ownerID,
		"url", feedURL,
		"dialect", dialect,
		"fetched", result.Fetched,
		"created", result.Created,
		"updated", result.Updated,
		"failed", len(result.Errors),
		"dry_run", dryRun,
	)
	return result, nil
}

// persistRecords upserts records one at a time. No batching: a failed row
// is reported individually and never cancels the following rows.
func (uc *importerUseCase) persistRecords(ctx context.Context, ownerID string, records []entity.PropertyRecord, publish, dryRun bool) *entity.ImportResult {
	result := &entity.ImportResult{
		Fetched:   len(records),
		DryRun:    dryRun,
		Published: publish && !dryRun,
	}

	if dryRun {
		result.Ignored = len(records)
		metrics.ImportRecordsTotal.WithLabelValues("ignored").Add(float64(len(records)))
		return result
	}

	for _, rec := range records {
		created, err := uc.properties.Upsert(ctx, ownerID, rec, publish)
		if err != nil {
			slog.Error("Failed to persist imported record", "owner_id", ownerID, "record_id", rec.ID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rec.ID, err))
			metrics.ImportRecordsTotal.WithLabelValues("failed").Inc()
			continue
		}
		if created {
			result.Created++
			metrics.ImportRecordsTotal.WithLabelValues("created").Inc()
		} else {
			result.Updated++
			metrics.ImportRecordsTotal.WithLabelValues("updated").Inc()
		}
	}
	return result
}

func (uc *importerUseCase) fetchFeed(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", "feed-service/1.0")

	resp, err := uc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return body, nil
}

// absolutizePhotos resolves relative photo URLs against the feed URL.
func absolutizePhotos(records []entity.PropertyRecord, feedURL string) {
	base, err := url.Parse(feedURL)
	if err != nil {
		return
	}
	for i := range records {
		for j, photo := range records[i].Photos {
			if abs, err := utils.ToAbsoluteURL(base, photo); err == nil {
				records[i].Photos[j] = abs
			}
		}
	}
}

func parserForFormat(format string) (feed.Parser, error) {
	switch format {
	case "cnm":
		return feed.NewGenericParser(), nil
	case "vrsync":
		return feed.NewVivaRealParser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
