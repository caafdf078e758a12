package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"segdesk/internal/modules/workflow/domain"
	workflowout "segdesk/internal/modules/workflow/port/out"
	apperrors "segdesk/internal/platform/errors"
	"segdesk/internal/platform/id"
	"segdesk/internal/platform/logging"
)

// HTTPDoer describes the HTTP client used by the backend.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type HTTPBackendOptions struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Client  HTTPDoer
	IDs     id.Generator
	Logger  *slog.Logger
}

type HTTPBackend struct {
	baseURL string
	token   string
	timeout time.Duration
	client  HTTPDoer
	ids     id.Generator
	logger  *slog.Logger
}

func NewHTTPBackend(opts HTTPBackendOptions) workflowout.SegmentBackend {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	ids := opts.IDs
	if ids == nil {
		ids = id.UUID{}
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		token:   strings.TrimSpace(opts.Token),
		timeout: opts.Timeout,
		client:  client,
		ids:     ids,
		logger:  logging.Component(opts.Logger, "backend"),
	}
}

type segmentPayload struct {
	ID               int64   `json:"id"`
	AudioID          int64   `json:"audio_id"`
	AudioName        string  `json:"audio_name"`
	CreatedAt        string  `json:"created_at"`
	FilePath         string  `json:"file_path"`
	Status           string  `json:"status"`
	TranscribeOption *string `json:"transcribe_option"`
}

type segmentListPayload struct {
	Segments      []segmentPayload `json:"segments"`
	AudioSegments []segmentPayload `json:"audio_segments"`
	Count         int              `json:"count"`
}

type detailPayload struct {
	ID             int64   `json:"id"`
	SegmentID      int64   `json:"segment_id"`
	AudioName      string  `json:"audio_name"`
	Username       string  `json:"username"`
	AIText         string  `json:"ai_text"`
	TranscribeText *string `json:"transcribe_text"`
	ReportText     *string `json:"report_text"`
	Emotion        *string `json:"emotion"`
	Status         string  `json:"status"`
}

// updateBody always carries both texts so the absent one goes out as null.
type updateBody struct {
	TranscribeText *string `json:"transcribe_text"`
	ReportText     *string `json:"report_text"`
}

type updateBodyWithEmotion struct {
	updateBody
	Emotion *string `json:"emotion"`
}

func (b *HTTPBackend) ListSegments(ctx context.Context, userID string) ([]domain.Segment, error) {
	path := "/segments"
	if userID != "" {
		path += "?user_id=" + url.QueryEscape(userID)
	}
	var payload segmentListPayload
	if err := b.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	items := payload.Segments
	if items == nil {
		items = payload.AudioSegments
	}
	segments := make([]domain.Segment, 0, len(items))
	for _, item := range items {
		segments = append(segments, toSegment(item))
	}
	return segments, nil
}

func (b *HTTPBackend) GetDetail(ctx context.Context, segmentID int64) (domain.SegmentDetail, error) {
	var payload detailPayload
	if err := b.do(ctx, http.MethodGet, "/segment_detail/"+strconv.FormatInt(segmentID, 10), nil, &payload); err != nil {
		return domain.SegmentDetail{}, err
	}
	detail := domain.SegmentDetail{
		SegmentID:      payload.SegmentID,
		AudioName:      payload.AudioName,
		Username:       payload.Username,
		AIText:         payload.AIText,
		TranscribeText: deref(payload.TranscribeText),
		ReportText:     deref(payload.ReportText),
		Emotion:        deref(payload.Emotion),
		Status:         domain.Status(payload.Status),
	}
	if detail.SegmentID == 0 {
		detail.SegmentID = payload.ID
	}
	if detail.SegmentID == 0 {
		detail.SegmentID = segmentID
	}
	return detail, nil
}

func (b *HTTPBackend) UpdateSegment(ctx context.Context, segmentID int64, update domain.SegmentUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}
	base := updateBody{TranscribeText: update.TranscribeText, ReportText: update.ReportText}
	var body any = base
	if update.IncludeEmotion {
		body = updateBodyWithEmotion{updateBody: base, Emotion: update.Emotion}
	}
	return b.do(ctx, http.MethodPut, "/segment/"+strconv.FormatInt(segmentID, 10), body, nil)
}

func (b *HTTPBackend) StartSegment(ctx context.Context, segmentID int64) error {
	return b.do(ctx, http.MethodPut, "/segment/"+strconv.FormatInt(segmentID, 10)+"/start", nil, nil)
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, body any, out any) error {
	if b.baseURL == "" {
		return fmt.Errorf("%w: backend base url is not configured", apperrors.ErrInvalidInput)
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	requestID := b.ids.New()
	ctx = logging.WithRequestID(ctx, requestID)
	logger := logging.WithContext(ctx, b.logger)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	started := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		logger.Warn("request failed", slog.String("method", method), slog.String("path", path), logging.Error(err))
		return fmt.Errorf("%w: %s %s: %w", apperrors.ErrBackend, method, path, err)
	}
	defer resp.Body.Close()
	logger.Debug("request done",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, method, path)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s", apperrors.ErrBackend, method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", apperrors.ErrBackend, method, path, err)
	}
	return nil
}

var createdAtLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

func toSegment(p segmentPayload) domain.Segment {
	seg := domain.Segment{
		ID:               p.ID,
		AudioID:          p.AudioID,
		AudioName:        p.AudioName,
		FilePath:         p.FilePath,
		Status:           domain.Status(p.Status),
		TranscribeOption: p.TranscribeOption,
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, p.CreatedAt); err == nil {
			seg.CreatedAt = t.UTC()
			break
		}
	}
	return seg
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
