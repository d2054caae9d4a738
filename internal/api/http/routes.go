package httpapi

import (
	"errors"
	"log"
	"net/url"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lacandula/weather-dashboard/internal/blob"
	"github.com/lacandula/weather-dashboard/internal/store"
)

var validate = validator.New()

// UploadURLPrefix is where blob keys are exposed as public URLs; main mounts
// the blob directory statically under the same prefix.
const UploadURLPrefix = "/uploads"

// RegisterRoutes wires the annotation and history handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, st *store.Store, blobs *blob.Store) {
	h := &handlers{store: st, blobs: blobs}

	app.Get("/history", h.listHistory)
	app.Post("/history", h.createHistory)
	app.Delete("/history/:id", h.deleteHistory)

	app.Get("/notes", h.listNotes)
	app.Post("/notes", h.createNote)
	app.Get("/notes/:city", h.listNotesForCity)
	app.Put("/notes/:id", h.updateNote)
	app.Delete("/notes/:id", h.deleteNote)

	app.Post("/notes/:noteId/images", h.uploadNoteImage)
	app.Get("/notes/:noteId/images", h.listNoteImages)
	app.Delete("/images/:imageId", h.deleteNoteImage)

	app.Post("/cities/:city/photos", h.uploadCityPhoto)
	app.Get("/cities/:city/photos", h.listCityPhotos)
	app.Delete("/photos/:photoId", h.deleteCityPhoto)
}

type handlers struct {
	store *store.Store
	blobs *blob.Store
}

// mapStoreError converts store sentinels into HTTP errors.
func mapStoreError(err error, fallback string) error {
	switch {
	case errors.Is(err, store.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// --- history ---

func (h *handlers) listHistory(c *fiber.Ctx) error {
	entries, err := h.store.ListHistory()
	if err != nil {
		return mapStoreError(err, "failed to fetch history")
	}
	return c.JSON(entries)
}

type createHistoryRequest struct {
	City        string `json:"city" validate:"required"`
	Description string `json:"description"`
}

func (h *handlers) createHistory(c *fiber.Ctx) error {
	var req createHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "city is required")
	}

	if _, err := h.store.RecordSearch(req.City, req.Description); err != nil {
		return mapStoreError(err, "failed to add history")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Added to history"})
}

func (h *handlers) deleteHistory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteHistory(id); err != nil {
		return mapStoreError(err, "failed to delete history")
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

// --- notes ---

func (h *handlers) listNotes(c *fiber.Ctx) error {
	notes, err := h.store.ListNotes()
	if err != nil {
		return mapStoreError(err, "failed to fetch notes")
	}
	return c.JSON(fiber.Map{"notes": notes})
}

func (h *handlers) listNotesForCity(c *fiber.Ctx) error {
	cityName, err := pathParam(c, "city")
	if err != nil {
		return err
	}
	notes, err := h.store.ListNotesForCity(cityName)
	if err != nil {
		return mapStoreError(err, "failed to fetch notes")
	}
	return c.JSON(fiber.Map{"notes": notes})
}

type createNoteRequest struct {
	City string `json:"city" validate:"required"`
	Note string `json:"note" validate:"required"`
}

func (h *handlers) createNote(c *fiber.Ctx) error {
	var req createNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "city and note are required")
	}

	if _, err := h.store.CreateNote(req.City, req.Note); err != nil {
		return mapStoreError(err, "failed to create note")
	}
	return c.JSON(fiber.Map{"message": "Note added"})
}

type updateNoteRequest struct {
	Note string `json:"note" validate:"required"`
}

func (h *handlers) updateNote(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req updateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "note is required")
	}

	if err := h.store.UpdateNote(id, req.Note); err != nil {
		return mapStoreError(err, "failed to update note")
	}
	return c.JSON(fiber.Map{"message": "Note updated"})
}

func (h *handlers) deleteNote(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteNote(id); err != nil {
		return mapStoreError(err, "failed to delete note")
	}
	return c.JSON(fiber.Map{"message": "Note deleted"})
}

// --- note images ---

func (h *handlers) uploadNoteImage(c *fiber.Ctx) error {
	noteID, err := paramID(c, "noteId")
	if err != nil {
		return err
	}

	imageURL, err := h.storeUpload(c, "image")
	if err != nil {
		return err
	}

	if _, err := h.store.CreateNoteImage(noteID, imageURL); err != nil {
		// The blob is already on disk; the sweeper reclaims it.
		log.Printf("storage inconsistency: blob %s written but row insert failed: %v", imageURL, err)
		return mapStoreError(err, "failed to save image")
	}
	return c.JSON(fiber.Map{"imageUrl": imageURL})
}

func (h *handlers) listNoteImages(c *fiber.Ctx) error {
	noteID, err := paramID(c, "noteId")
	if err != nil {
		return err
	}
	images, err := h.store.ListImagesForNote(noteID)
	if err != nil {
		return mapStoreError(err, "failed to fetch images")
	}
	return c.JSON(fiber.Map{"images": images})
}

func (h *handlers) deleteNoteImage(c *fiber.Ctx) error {
	id, err := paramID(c, "imageId")
	if err != nil {
		return err
	}

	img, err := h.store.GetNoteImage(id)
	if errors.Is(err, store.ErrNotFound) {
		// Already gone; deletes are idempotent.
		return c.JSON(fiber.Map{"message": "Deleted"})
	}
	if err != nil {
		return mapStoreError(err, "failed to delete image")
	}

	h.deleteBlobForURL(img.ImageURL)

	if err := h.store.DeleteNoteImage(id); err != nil {
		return mapStoreError(err, "failed to delete image")
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

// --- city photos ---

func (h *handlers) uploadCityPhoto(c *fiber.Ctx) error {
	cityName, err := pathParam(c, "city")
	if err != nil {
		return err
	}

	imageURL, err := h.storeUpload(c, "photo")
	if err != nil {
		return err
	}

	if _, err := h.store.CreateCityPhoto(cityName, imageURL); err != nil {
		log.Printf("storage inconsistency: blob %s written but row insert failed: %v", imageURL, err)
		return mapStoreError(err, "failed to save photo")
	}
	return c.JSON(fiber.Map{"imageUrl": imageURL})
}

func (h *handlers) listCityPhotos(c *fiber.Ctx) error {
	cityName, err := pathParam(c, "city")
	if err != nil {
		return err
	}
	photos, err := h.store.ListPhotosForCity(cityName)
	if err != nil {
		return mapStoreError(err, "failed to fetch photos")
	}
	return c.JSON(fiber.Map{"photos": photos})
}

func (h *handlers) deleteCityPhoto(c *fiber.Ctx) error {
	id, err := paramID(c, "photoId")
	if err != nil {
		return err
	}

	photo, err := h.store.GetCityPhoto(id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(fiber.Map{"message": "Deleted"})
	}
	if err != nil {
		return mapStoreError(err, "failed to delete photo")
	}

	h.deleteBlobForURL(photo.ImageURL)

	if err := h.store.DeleteCityPhoto(id); err != nil {
		return mapStoreError(err, "failed to delete photo")
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

// --- helpers ---

// storeUpload writes the multipart file under field into the blob store and
// returns its public URL. The caller inserts the referencing row afterwards;
// the two writes are not transactional.
func (h *handlers) storeUpload(c *fiber.Ctx, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, field+" file is required")
	}

	f, err := fh.Open()
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "could not read uploaded file")
	}
	defer f.Close()

	key, err := h.blobs.Put(fh.Filename, f)
	if err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "failed to store file")
	}

	return UploadURLPrefix + "/" + key, nil
}

// deleteBlobForURL best-effort removes the blob behind an image URL. Failure
// is logged as a storage inconsistency and the caller still deletes the row,
// leaving an orphaned blob for the sweeper.
func (h *handlers) deleteBlobForURL(imageURL string) {
	key := path.Base(imageURL)
	if key == "" || key == "." || key == "/" {
		return
	}
	if err := h.blobs.Delete(key); err != nil {
		log.Printf("storage inconsistency: row deleted but blob %s removal failed: %v", key, err)
	}
}

// pathParam returns a non-empty, percent-decoded path parameter.
func pathParam(c *fiber.Ctx, name string) (string, error) {
	v, err := url.PathUnescape(c.Params(name))
	if err != nil || v == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, name+" is required")
	}
	return v, nil
}
