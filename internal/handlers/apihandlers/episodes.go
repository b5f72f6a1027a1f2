package apihandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"
	"github.com/podhaven/podhaven/internal/commands"
	"github.com/podhaven/podhaven/internal/mediapolicy"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/queries"
	"github.com/podhaven/podhaven/internal/utils"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

// multipartMemoryLimit is how much of a multipart body stays in memory
// before spilling to disk.
const multipartMemoryLimit = 8 << 20

type audioUpload struct {
	fileName    string
	contentType string
	size        int64
	content     io.ReadCloser
}

// parseAudioUpload extracts the "audio" part of a multipart request.
// The request body is capped slightly above the media policy limit so
// oversized uploads fail fast instead of streaming through.
func parseAudioUpload(w http.ResponseWriter, r *http.Request) (*audioUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, mediapolicy.MaxUploadBytes+multipartMemoryLimit)

	err := r.ParseMultipartForm(multipartMemoryLimit)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return nil, fmt.Errorf("request body too large: %w", apiError.ErrValidation)
		}
		return nil, fmt.Errorf("parsing multipart form: %w", apiError.ErrApiBadRequest)
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		return nil, fmt.Errorf("missing audio file: %w", apiError.ErrApiBadRequest)
	}

	return &audioUpload{
		fileName:    header.Filename,
		contentType: header.Header.Get("Content-Type"),
		size:        header.Size,
		content:     file,
	}, nil
}

type AddEpisodeResponse struct {
	Id              int64 `json:"id"`
	DurationMinutes int   `json:"durationMinutes"`
}

func AddEpisode(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := requireUser(w, r)
	if !ok {
		return
	}

	podcastId, ok := pathId(w, r, "podcastId")
	if !ok {
		return
	}

	upload, err := parseAudioUpload(w, r)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
	defer utils.IgnoreError(upload.content.Close)

	title := r.FormValue("title")
	if title == "" {
		apiError.HandleHttpError(w, fmt.Errorf("title is required: %w", apiError.ErrApiBadRequest))
		return
	}

	var releaseDate *time.Time
	if raw := r.FormValue("releaseDate"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apiError.HandleHttpError(w, fmt.Errorf("releaseDate is not a valid timestamp: %w", apiError.ErrApiBadRequest))
			return
		}
		releaseDate = &parsed
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.AddEpisodeResponse](ctx, mediator, commands.AddEpisode{
		UserId:      currentUser.UserId,
		PodcastId:   podcastId,
		Title:       title,
		ReleaseDate: releaseDate,
		FileName:    upload.fileName,
		ContentType: upload.contentType,
		Size:        upload.size,
		Content:     upload.content,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(AddEpisodeResponse{
		Id:              response.Id,
		DurationMinutes: response.DurationMinutes,
	})
}

type ReplaceEpisodeAudioResponse struct {
	DurationMinutes int `json:"durationMinutes"`
}

func ReplaceEpisodeAudio(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := requireUser(w, r)
	if !ok {
		return
	}

	episodeId, ok := pathId(w, r, "episodeId")
	if !ok {
		return
	}

	upload, err := parseAudioUpload(w, r)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
	defer utils.IgnoreError(upload.content.Close)

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.ReplaceEpisodeAudioResponse](ctx, mediator, commands.ReplaceEpisodeAudio{
		UserId:      currentUser.UserId,
		EpisodeId:   episodeId,
		FileName:    upload.fileName,
		ContentType: upload.contentType,
		Size:        upload.size,
		Content:     upload.content,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(ReplaceEpisodeAudioResponse{
		DurationMinutes: response.DurationMinutes,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
}

func DeleteEpisode(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := requireUser(w, r)
	if !ok {
		return
	}

	episodeId, ok := pathId(w, r, "episodeId")
	if !ok {
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	_, err := mediatr.Send[*commands.DeleteEpisodeResponse](ctx, mediator, commands.DeleteEpisode{
		UserId:    currentUser.UserId,
		EpisodeId: episodeId,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type GetEpisodeResponse struct {
	Id              int64                        `json:"id"`
	PodcastId       int64                        `json:"podcastId"`
	Title           string                       `json:"title"`
	DurationMinutes int                          `json:"durationMinutes"`
	Status          string                       `json:"status"`
	ReleaseDate     time.Time                    `json:"releaseDate"`
	PlayCount       int64                        `json:"playCount"`
	PlayUrl         string                       `json:"playUrl,omitempty"`
	Comments        []GetEpisodeResponseComment  `json:"comments"`
}

type GetEpisodeResponseComment struct {
	CommentId  string    `json:"commentId"`
	AuthorId   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	PostedAt   time.Time `json:"postedAt"`
}

func GetEpisode(w http.ResponseWriter, r *http.Request) {
	episodeId, ok := pathId(w, r, "episodeId")
	if !ok {
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	episode, err := mediatr.Send[*queries.GetEpisodeResponse](ctx, mediator, queries.GetEpisode{
		EpisodeId: episodeId,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	response := GetEpisodeResponse{
		Id:              episode.Id,
		PodcastId:       episode.PodcastId,
		Title:           episode.Title,
		DurationMinutes: episode.DurationMinutes,
		Status:          episode.Status,
		ReleaseDate:     episode.ReleaseDate,
		PlayCount:       episode.PlayCount,
		PlayUrl:         episode.PlayUrl,
		Comments:        make([]GetEpisodeResponseComment, len(episode.Comments)),
	}

	for i, comment := range episode.Comments {
		response.Comments[i] = GetEpisodeResponseComment{
			CommentId:  comment.CommentId,
			AuthorId:   comment.AuthorId,
			AuthorName: comment.AuthorName,
			Text:       comment.Text,
			PostedAt:   comment.PostedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
}

func GetEpisodeAudio(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := requireUser(w, r)
	if !ok {
		return
	}

	episodeId, ok := pathId(w, r, "episodeId")
	if !ok {
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*queries.GetEpisodeAudioResponse](ctx, mediator, queries.GetEpisodeAudio{
		UserId:    currentUser.UserId,
		EpisodeId: episodeId,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
	defer utils.IgnoreError(response.Content.Close)

	w.Header().Set("Content-Type", "audio/mpeg")
	_, err = io.Copy(w, response.Content)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
}

type RecordPlayResponse struct {
	PlayCount int64 `json:"playCount"`
}

func RecordPlay(w http.ResponseWriter, r *http.Request) {
	episodeId, ok := pathId(w, r, "episodeId")
	if !ok {
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.RecordPlayResponse](ctx, mediator, commands.RecordPlay{
		EpisodeId: episodeId,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(RecordPlayResponse{
		PlayCount: response.PlayCount,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
}
