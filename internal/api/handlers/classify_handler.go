package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"moderation-api/internal/classifier"
	"moderation-api/internal/logger"
	"moderation-api/internal/media"
	"moderation-api/internal/metrics"
	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
	"moderation-api/internal/services"
	"moderation-api/internal/storage"
)

// ClassifyHandler serves the three moderation endpoints. Every request
// runs the full pipeline: classify, persist the submission, and push a
// webhook when the content was flagged.
type ClassifyHandler struct {
	classificationService services.ClassificationService
	submissionService     services.SubmissionService
	webhookService        services.WebhookService
	fetcher               *media.Fetcher
	sampler               *media.VideoSampler
	mediaStore            storage.MediaStore
}

func NewClassifyHandler(
	classificationService services.ClassificationService,
	submissionService services.SubmissionService,
	webhookService services.WebhookService,
	fetcher *media.Fetcher,
	sampler *media.VideoSampler,
	mediaStore storage.MediaStore,
) *ClassifyHandler {
	return &ClassifyHandler{
		classificationService: classificationService,
		submissionService:     submissionService,
		webhookService:        webhookService,
		fetcher:               fetcher,
		sampler:               sampler,
		mediaStore:            mediaStore,
	}
}

type textRequest struct {
	Text string `json:"text"`
}

type imageRequest struct {
	ImageURL string `json:"image_url"`
}

type videoRequest struct {
	VideoURL  string `json:"video_url"`
	FrameSkip *int   `json:"frame_skip"`
}

func (h *ClassifyHandler) ModerateText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		respondWithError(w, http.StatusBadRequest, "Text is required")
		return
	}

	verdict, err := h.classificationService.ClassifyText(r.Context(), req.Text)
	if err != nil {
		h.respondClassificationError(w, models.ContentText, err)
		return
	}

	h.finish(w, r, models.ContentText, req.Text, "", verdict)
}

func (h *ClassifyHandler) ModerateImage(w http.ResponseWriter, r *http.Request) {
	data, contentRef, err := h.imageBytes(r)
	if err != nil {
		h.respondClassificationError(w, models.ContentImage, err)
		return
	}

	img, err := media.DecodeImage(data)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unsupported or corrupt image")
		return
	}

	verdict, err := h.classificationService.ClassifyImage(r.Context(), img)
	if err != nil {
		h.respondClassificationError(w, models.ContentImage, err)
		return
	}

	if contentRef == "" {
		contentRef = h.archive(r, "images", data, "image/jpeg")
	}

	h.finish(w, r, models.ContentImage, "", contentRef, verdict)
}

func (h *ClassifyHandler) ModerateVideo(w http.ResponseWriter, r *http.Request) {
	data, contentRef, stride, err := h.videoBytes(r)
	if err != nil {
		h.respondClassificationError(w, models.ContentVideo, err)
		return
	}
	if stride < 1 {
		respondWithError(w, http.StatusBadRequest, "frame_skip must be a positive integer")
		return
	}

	tmp, err := os.CreateTemp("", "moderation-video-*")
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	tmp.Close()

	src, err := h.sampler.Open(r.Context(), tmp.Name(), stride)
	if err != nil {
		h.respondClassificationError(w, models.ContentVideo, err)
		return
	}
	defer src.Close()

	verdict, err := h.classificationService.ClassifyVideo(r.Context(), src, stride)
	if err != nil {
		h.respondClassificationError(w, models.ContentVideo, err)
		return
	}

	if contentRef == "" {
		contentRef = h.archive(r, "videos", data, "video/mp4")
	}

	h.finish(w, r, models.ContentVideo, "", contentRef, verdict)
}

// finish persists the submission, fires the webhook for flagged
// content, and writes the moderation response.
func (h *ClassifyHandler) finish(w http.ResponseWriter, r *http.Request, kind models.ContentKind, content, contentRef string, verdict *services.Verdict) {
	apiKey, _ := services.APIKeyFromContext(r.Context())

	submission, err := h.submissionService.Submit(r.Context(), apiKey, kind, content, contentRef, verdict)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to store submission")
		return
	}

	h.webhookService.DispatchFlagged(apiKey, submission)

	respondWithJSON(w, http.StatusOK, submissionResponse(submission))
}

// imageBytes resolves the image payload from either a multipart upload
// or a JSON body carrying a source URL.
func (h *ClassifyHandler) imageBytes(r *http.Request) ([]byte, string, error) {
	if isMultipart(r) {
		data, err := formFileBytes(r, "image")
		return data, "", err
	}

	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageURL == "" {
		return nil, "", errors.Wrap(errors.ErrInvalidInput, "image file or image_url is required")
	}

	data, err := h.fetcher.Fetch(r.Context(), req.ImageURL, media.ImageFetchTimeout)
	if err != nil {
		return nil, "", err
	}
	return data, req.ImageURL, nil
}

// videoBytes resolves the video payload plus the sampling stride, from
// either a multipart upload or a JSON body carrying a source URL.
func (h *ClassifyHandler) videoBytes(r *http.Request) ([]byte, string, int, error) {
	if isMultipart(r) {
		data, err := formFileBytes(r, "video")
		if err != nil {
			return nil, "", 0, err
		}
		stride := classifier.DefaultFrameStride
		if raw := r.FormValue("frame_skip"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return nil, "", 0, errors.Wrap(errors.ErrInvalidInput, "frame_skip must be a positive integer")
			}
			stride = parsed
		}
		return data, "", stride, nil
	}

	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoURL == "" {
		return nil, "", 0, errors.Wrap(errors.ErrInvalidInput, "video file or video_url is required")
	}

	stride := classifier.DefaultFrameStride
	if req.FrameSkip != nil {
		stride = *req.FrameSkip
	}

	data, err := h.fetcher.Fetch(r.Context(), req.VideoURL, media.VideoFetchTimeout)
	if err != nil {
		return nil, "", 0, err
	}
	return data, req.VideoURL, stride, nil
}

// archive stores uploaded bytes so reviewers can see what was
// classified. Failures only cost the reference, never the request.
func (h *ClassifyHandler) archive(r *http.Request, prefix string, data []byte, contentType string) string {
	if h.mediaStore == nil {
		return ""
	}
	key := fmt.Sprintf("%s/%d", prefix, time.Now().UnixNano())
	url, err := h.mediaStore.Archive(r.Context(), key, data, contentType)
	if err != nil {
		logger.LogEvent(logrus.WarnLevel, "Failed to archive media", logrus.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return ""
	}
	return url
}

func (h *ClassifyHandler) respondClassificationError(w http.ResponseWriter, kind models.ContentKind, err error) {
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrFetchTimeout):
		respondWithError(w, http.StatusGatewayTimeout, "Timed out fetching content")
	case errors.Is(err, errors.ErrTranslationUnavailable), errors.Is(err, errors.ErrAdapterUnavailable):
		metrics.ClassificationFailures.WithLabelValues(string(kind)).Inc()
		respondWithError(w, http.StatusBadGateway, "Classification backend is unavailable")
	default:
		metrics.ClassificationFailures.WithLabelValues(string(kind)).Inc()
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func formFileBytes(r *http.Request, field string) ([]byte, error) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "invalid multipart form")
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, field+" file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read uploaded file")
	}
	return data, nil
}

func submissionResponse(submission *models.Submission) map[string]interface{} {
	return map[string]interface{}{
		"submission_id":         submission.ID,
		"content_type":          submission.ContentKind,
		"status":                submission.Status,
		"flagged":               submission.Flagged,
		"detected_categories":   submission.DetectedCategories,
		"classification_result": submission.Result,
		"message":               submission.ResponseMessage(),
		"created_at":            submission.CreatedAt,
	}
}
