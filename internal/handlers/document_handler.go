package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/services"
	"github.com/freightflow/freight-marketplace/pkg/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentHandler handles HTTP requests for shipment documents.
type DocumentHandler struct {
	Service   *services.DocumentService
	UploadDir string
}

// NewDocumentHandler creates a new instance of DocumentHandler.
func NewDocumentHandler(service *services.DocumentService, uploadDir string) *DocumentHandler {
	return &DocumentHandler{
		Service:   service,
		UploadDir: uploadDir,
	}
}

// UploadDocumentHandler handles POST /shipments/{id}/documents. The file is
// stored on disk under a uuid-prefixed name and recorded against the shipment.
func (h *DocumentHandler) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	uploaderID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	shipmentID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid shipment ID", http.StatusBadRequest)
		return
	}

	r.ParseMultipartForm(10 << 20) // max ~10MB
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	storedName := fmt.Sprintf("%s_%s", uuid.NewString(), header.Filename)
	if err := os.MkdirAll(h.UploadDir, os.ModePerm); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	out, err := os.Create(filepath.Join(h.UploadDir, storedName))
	if err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	doc := &models.Document{
		ShipmentID: shipmentID,
		Type:       r.FormValue("type"),
		FileName:   header.Filename,
		FileURL:    "/uploads/" + storedName,
	}

	created, err := h.Service.AttachDocument(r.Context(), uploaderID, doc)
	if err != nil {
		log.WithError(err).Warn("Failed to attach document")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetDocumentsHandler handles GET /shipments/{id}/documents.
func (h *DocumentHandler) GetDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	docs, err := h.Service.GetDocuments(r.Context(), vars["id"])
	if err != nil {
		log.WithError(err).Warn("Failed to list documents")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs)
}
