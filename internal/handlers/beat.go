// internal/handlers/beat.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/beatmarket/internal/blobstore"
	"github.com/javajoker/beatmarket/internal/config"
	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

type BeatHandler struct {
	market *services.Marketplace
	cfg    *config.Config
}

type RateBeatRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

func NewBeatHandler(market *services.Marketplace, cfg *config.Config) *BeatHandler {
	return &BeatHandler{
		market: market,
		cfg:    cfg,
	}
}

// GET /beats
func (h *BeatHandler) GetBeats(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	params := utils.GetPaginationParams(c)

	var filter services.BeatFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "query"), err.Error())
		return
	}
	filter.Sort = params.Sort
	filter.Tags = splitTags(filter.Tags)

	viewerID, _ := utils.GetUserIDFromContext(c)
	beats := h.market.ListBeats(filter, viewerID)

	result := utils.CreatePaginationResult(utils.Paginate(beats, params), int64(len(beats)), params)
	utils.PaginatedResponse(c, result)
}

// GET /beats/meta
func (h *BeatHandler) GetMeta(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"genres":       models.Genres,
		"keys":         models.MusicalKeys,
		"tags":         models.PopularTags,
		"currencies":   []models.Currency{models.CurrencyRUB, models.CurrencyUSD},
		"audio_types":  blobstore.AllowedAudioTypes,
		"max_upload":   h.cfg.Blob.MaxSize,
		"sort_options": []string{services.SortNewest, services.SortOldest, services.SortPriceLow, services.SortPriceHigh, services.SortRating, services.SortPopular},
	})
}

// GET /beats/:id
func (h *BeatHandler) GetBeat(c *gin.Context) {
	beat, err := h.market.Catalog.GetBeat(c.Param("id"))
	if err != nil {
		respondError(c, err, "beat")
		return
	}

	response := gin.H{
		"beat": beat,
	}
	if collab, err := h.market.Social.CollaborationForBeat(beat.ID); err == nil {
		response["collaboration"] = collab
	}
	if viewerID, ok := utils.GetUserIDFromContext(c); ok {
		rating, rated := h.market.Catalog.UserRating(viewerID, beat.ID)
		response["is_favorite"] = h.market.Catalog.IsFavorite(viewerID, beat.ID)
		response["purchased"] = h.market.Cart.HasPurchased(viewerID, beat.ID)
		if rated {
			response["user_rating"] = rating
		}
	}

	utils.SuccessResponse(c, response)
}

// POST /beats
// Accepts either a JSON body with audioUrl, or a multipart form with a JSON
// "data" field plus "audio" and optional "wav" files.
func (h *BeatHandler) CreateBeat(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var (
		req   services.CreateBeatRequest
		audio *blobstore.Payload
		wav   *blobstore.Payload
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := json.Unmarshal([]byte(c.PostForm("data")), &req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "data"), err.Error())
			return
		}

		var err error
		if audio, err = h.readUpload(c, "audio"); err != nil {
			respondError(c, err, "beat")
			return
		}
		if wav, err = h.readUpload(c, "wav"); err != nil {
			respondError(c, err, "beat")
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	req.SellerID = userID
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	beat, err := h.market.Catalog.CreateBeat(c.Request.Context(), req, audio, wav)
	if err != nil {
		respondError(c, err, "beat")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBeatCreated),
		"beat":    beat,
	})
}

// PUT /beats/:id
func (h *BeatHandler) UpdateBeat(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	if _, ok := h.ownedBeat(c); !ok {
		return
	}

	var req services.UpdateBeatRequest
	if !bindJSON(c, &req) {
		return
	}

	beat, err := h.market.Catalog.UpdateBeat(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "beat")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBeatUpdated),
		"beat":    beat,
	})
}

// DELETE /beats/:id
func (h *BeatHandler) DeleteBeat(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	beat, ok := h.ownedBeat(c)
	if !ok {
		return
	}

	h.market.Catalog.DeleteBeat(c.Request.Context(), beat.ID)

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBeatDeleted),
	})
}

// POST /beats/:id/rating
func (h *BeatHandler) RateBeat(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req RateBeatRequest
	if !bindJSON(c, &req) {
		return
	}

	beat, err := h.market.Catalog.Rate(c.Request.Context(), userID, c.Param("id"), req.Rating)
	if err != nil {
		respondError(c, err, "beat")
		return
	}
	if beat == nil {
		utils.NotFoundResponse(c, "beat")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBeatRated),
		"beat":    beat,
	})
}

// POST /beats/:id/favorite
func (h *BeatHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	beatID := c.Param("id")
	if _, err := h.market.Catalog.GetBeat(beatID); err != nil {
		respondError(c, err, "beat")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"is_favorite": h.market.Catalog.ToggleFavorite(c.Request.Context(), userID, beatID),
	})
}

// GET /beats/:id/audio and /beats/:id/wav
// Served outside the exclusive section: the lookup takes the lock briefly and
// the bytes are written after it is released.
func (h *BeatHandler) StreamAudio(c *gin.Context) {
	wav := strings.HasSuffix(c.FullPath(), "/wav")

	h.market.Lock()
	beat, err := h.market.Catalog.GetBeat(c.Param("id"))
	var obj *blobstore.Object
	if err == nil {
		obj, err = h.market.Catalog.OpenAudio(c.Request.Context(), beat.ID, wav)
	}
	h.market.Unlock()

	if err != nil {
		if beat != nil && errors.Is(err, services.ErrNotFound) {
			remote := beat.AudioURL
			if wav {
				remote = beat.WavURL
			}
			if strings.HasPrefix(remote, "http://") || strings.HasPrefix(remote, "https://") {
				c.Redirect(http.StatusFound, remote)
				return
			}
			lang := utils.GetLangFromContext(c)
			utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", i18n.T(lang, i18n.KeyBeatAudioMissing), nil)
			return
		}
		respondError(c, err, "beat")
		return
	}

	if obj.ContentType != "" {
		c.Header("Content-Type", obj.ContentType)
	}
	c.Header("Cache-Control", "private, max-age=3600")
	http.ServeContent(c.Writer, c.Request, beat.ID, beat.CreatedAt, bytes.NewReader(obj.Data))
}

// ownedBeat loads the :id beat and checks that the caller owns it or is an
// admin, writing the error response otherwise.
func (h *BeatHandler) ownedBeat(c *gin.Context) (*models.Beat, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	beat, err := h.market.Catalog.GetBeat(c.Param("id"))
	if err != nil {
		respondError(c, err, "beat")
		return nil, false
	}
	if beat.SellerID != userID && !isAdmin(c) {
		utils.ForbiddenResponse(c, "")
		return nil, false
	}
	return beat, true
}

// readUpload reads an optional multipart file into a validated payload.
func (h *BeatHandler) readUpload(c *gin.Context, field string) (*blobstore.Payload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrValidation, err)
	}

	payload, err := readPayload(header)
	if err != nil {
		return nil, err
	}
	if err := blobstore.Validate(payload, h.cfg.Blob.MaxSize, blobstore.AllowedAudioTypes); err != nil {
		return nil, err
	}
	return payload, nil
}

func readPayload(header *multipart.FileHeader) (*blobstore.Payload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &blobstore.Payload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		FileName:    header.Filename,
	}, nil
}

// splitTags accepts both ?tags=a&tags=b and ?tags=a,b.
func splitTags(raw []string) []string {
	var tags []string
	for _, value := range raw {
		for _, tag := range strings.Split(value, ",") {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
