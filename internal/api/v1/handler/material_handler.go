package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"pathshala/internal/api/v1/dto"
	"pathshala/internal/model"
	"pathshala/internal/service"

	"github.com/go-playground/validator/v10"
)

// MaterialHandler handles material directory, access resolution and purchase
// endpoints
type MaterialHandler struct {
	materialService service.MaterialService
	accessService   service.AccessService
	validate        *validator.Validate
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materialService service.MaterialService, accessService service.AccessService, validate *validator.Validate) *MaterialHandler {
	return &MaterialHandler{materialService: materialService, accessService: accessService, validate: validate}
}

// RegisterRoutes mounts material routes
func (h *MaterialHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/materials", authMw(http.HandlerFunc(h.handleCollection)))
	mux.Handle("/materials/", authMw(http.HandlerFunc(h.handleMaterial)))
	mux.Handle("/material-purchases", authMw(http.HandlerFunc(h.handlePurchaseCollection)))
	mux.Handle("/material-purchases/", authMw(http.HandlerFunc(h.handlePurchase)))
	mux.Handle("/free-materials", authMw(http.HandlerFunc(h.listFree)))
	mux.Handle("/free-materials/", authMw(http.HandlerFunc(h.getFree)))
}

func (h *MaterialHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listMaterials(w, r)
	case http.MethodPost:
		h.createMaterial(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *MaterialHandler) handleMaterial(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/materials/"), "/")
	materialID := parts[0]
	if materialID == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getMaterial(w, r, materialID)
	case len(parts) == 1 && r.Method == http.MethodPut:
		h.updateMaterial(w, r, materialID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.deleteMaterial(w, r, materialID)
	case len(parts) == 2 && parts[1] == "access" && r.Method == http.MethodGet:
		h.resolveAccess(w, r, materialID)
	case len(parts) == 2 && parts[1] == "files" && r.Method == http.MethodPost:
		h.initiateFileUpload(w, r, materialID)
	default:
		http.NotFound(w, r)
	}
}

func (h *MaterialHandler) handlePurchaseCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.purchase(w, r)
}

func (h *MaterialHandler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/material-purchases/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "pending" && r.Method == http.MethodGet:
		h.listPendingPurchases(w, r)
	case len(parts) == 2 && parts[1] == "approve" && r.Method == http.MethodPost:
		h.approvePurchase(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

// createMaterial godoc
// @Summary Create a material
// @Description Creates a material directory entry. Staff only.
// @Tags materials
// @Accept json
// @Produce json
// @Param material body dto.MaterialCreateDTO true "Material creation request"
// @Success 201 {object} model.Material
// @Router /materials [post]
func (h *MaterialHandler) createMaterial(w http.ResponseWriter, r *http.Request) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.MaterialCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	material := &model.Material{
		Title:         req.Title,
		Price:         req.Price,
		ImageURL:      req.ImageURL,
		AccessControl: req.AccessControl,
		ForCourses:    req.ForCourses,
	}
	created, err := h.materialService.CreateMaterial(r.Context(), material)
	if err != nil {
		http.Error(w, "Failed to create material: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// listMaterials godoc
// @Summary List materials
// @Tags materials
// @Produce json
// @Success 200 {array} model.Material
// @Router /materials [get]
func (h *MaterialHandler) listMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.materialService.ListMaterials(r.Context())
	if err != nil {
		http.Error(w, "Failed to list materials: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

func (h *MaterialHandler) getMaterial(w http.ResponseWriter, r *http.Request, materialID string) {
	material, err := h.materialService.GetMaterialByID(r.Context(), materialID)
	if err != nil {
		h.writeMaterialError(w, err, "Failed to retrieve material")
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func (h *MaterialHandler) updateMaterial(w http.ResponseWriter, r *http.Request, materialID string) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.MaterialUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	material, err := h.materialService.GetMaterialByID(r.Context(), materialID)
	if err != nil {
		h.writeMaterialError(w, err, "Failed to retrieve material")
		return
	}
	if req.Title != nil {
		material.Title = *req.Title
	}
	if req.Price != nil {
		material.Price = *req.Price
	}
	if req.ImageURL != nil {
		material.ImageURL = *req.ImageURL
	}
	if req.AccessControl != nil {
		material.AccessControl = *req.AccessControl
	}
	if req.ForCourses != nil {
		material.ForCourses = req.ForCourses
	}

	updated, err := h.materialService.UpdateMaterial(r.Context(), material)
	if err != nil {
		h.writeMaterialError(w, err, "Failed to update material")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *MaterialHandler) deleteMaterial(w http.ResponseWriter, r *http.Request, materialID string) {
	if !requireStaff(w, r) {
		return
	}
	if err := h.materialService.DeleteMaterial(r.Context(), materialID); err != nil {
		h.writeMaterialError(w, err, "Failed to delete material")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveAccess godoc
// @Summary Resolve material access
// @Description Checks whether the authenticated student may open the material, through direct purchase or an enrolled course. Grants include presigned download links.
// @Tags materials
// @Produce json
// @Param materialId path string true "Material ID"
// @Success 200 {object} dto.MaterialAccessResponseDTO
// @Failure 403 {string} string "Access denied"
// @Failure 404 {string} string "Material not found"
// @Router /materials/{materialId}/access [get]
func (h *MaterialHandler) resolveAccess(w http.ResponseWriter, r *http.Request, materialID string) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	decision, err := h.accessService.ResolveMaterialAccess(r.Context(), studentID, materialID)
	if err != nil {
		switch err {
		case service.ErrStudentNotFound:
			http.Error(w, "Student not found", http.StatusNotFound)
		case service.ErrMaterialNotFound:
			http.Error(w, "Material not found", http.StatusNotFound)
		case service.ErrAccessDenied:
			http.Error(w, "Access denied", http.StatusForbidden)
		default:
			http.Error(w, "Failed to resolve access: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, dto.MaterialAccessResponseDTO{
		Material: decision.Material,
		Path:     decision.Path,
		CourseID: decision.CourseID,
		FileURLs: decision.FileURLs,
	})
}

// initiateFileUpload godoc
// @Summary Upload a material file
// @Description Returns a presigned PUT URL for a new PDF and records it on the material. Staff only.
// @Tags materials
// @Accept json
// @Produce json
// @Param materialId path string true "Material ID"
// @Param file body dto.FileUploadDTO true "Upload request"
// @Success 200 {object} dto.FileUploadResponseDTO
// @Router /materials/{materialId}/files [post]
func (h *MaterialHandler) initiateFileUpload(w http.ResponseWriter, r *http.Request, materialID string) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.FileUploadDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	material, uploadURL, err := h.materialService.InitiateFileUpload(r.Context(), materialID, req.Filename)
	if err != nil {
		h.writeMaterialError(w, err, "Failed to initiate upload")
		return
	}
	writeJSON(w, http.StatusOK, dto.FileUploadResponseDTO{
		Material:  material,
		UploadURL: uploadURL,
	})
}

// purchase godoc
// @Summary Purchase a material
// @Description Opens a standalone purchase for a purchasable material.
// @Tags materials
// @Accept json
// @Produce json
// @Param purchase body dto.MaterialPurchaseDTO true "Purchase request"
// @Success 201 {object} model.MaterialPurchase
// @Failure 409 {string} string "Already purchased"
// @Router /material-purchases [post]
func (h *MaterialHandler) purchase(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.MaterialPurchaseDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	purchase := &model.MaterialPurchase{
		MaterialID:    req.MaterialID,
		StudentID:     studentID,
		TransactionID: req.TransactionID,
		PaymentMethod: req.PaymentMethod,
	}
	created, err := h.materialService.Purchase(r.Context(), purchase)
	if err != nil {
		switch err {
		case service.ErrStudentNotFound:
			http.Error(w, "Student not found", http.StatusNotFound)
		case service.ErrMaterialNotFound:
			http.Error(w, "Material not found", http.StatusNotFound)
		case service.ErrMaterialNotForSale:
			http.Error(w, "Material is not purchasable", http.StatusBadRequest)
		case service.ErrAlreadyPurchased:
			http.Error(w, "Already purchased this material", http.StatusConflict)
		default:
			http.Error(w, "Failed to create purchase: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// listPendingPurchases godoc
// @Summary List pending material purchases
// @Description Staff only.
// @Tags materials
// @Produce json
// @Success 200 {array} model.MaterialPurchase
// @Router /material-purchases/pending [get]
func (h *MaterialHandler) listPendingPurchases(w http.ResponseWriter, r *http.Request) {
	if !requireStaff(w, r) {
		return
	}
	purchases, err := h.materialService.ListPendingPurchases(r.Context())
	if err != nil {
		http.Error(w, "Failed to list pending purchases: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

// approvePurchase godoc
// @Summary Verify a material payment
// @Description Approves a pending material purchase and grants the material to the student. Staff only.
// @Tags materials
// @Produce json
// @Param purchaseId path string true "Purchase ID"
// @Success 200 {object} model.MaterialPurchase
// @Failure 409 {string} string "Purchase is not pending"
// @Router /material-purchases/{purchaseId}/approve [post]
func (h *MaterialHandler) approvePurchase(w http.ResponseWriter, r *http.Request, purchaseID string) {
	if !requireStaff(w, r) {
		return
	}
	purchase, err := h.materialService.ApprovePurchase(r.Context(), purchaseID)
	if err != nil {
		switch err {
		case service.ErrPurchaseNotFound:
			http.Error(w, "Purchase not found", http.StatusNotFound)
		case service.ErrNotPending:
			http.Error(w, "Purchase is not pending", http.StatusConflict)
		default:
			http.Error(w, "Failed to approve purchase: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

// listFree godoc
// @Summary List free materials
// @Tags materials
// @Produce json
// @Success 200 {array} model.Material
// @Router /free-materials [get]
func (h *MaterialHandler) listFree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	materials, err := h.materialService.ListFree(r.Context())
	if err != nil {
		http.Error(w, "Failed to list free materials: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

// getFree godoc
// @Summary Get a free material
// @Description Returns an openly accessible material with download links.
// @Tags materials
// @Produce json
// @Param materialId path string true "Material ID"
// @Success 200 {object} dto.FreeMaterialResponseDTO
// @Failure 404 {string} string "Material not found"
// @Router /free-materials/{materialId} [get]
func (h *MaterialHandler) getFree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	materialID := strings.TrimPrefix(r.URL.Path, "/free-materials/")
	material, urls, err := h.materialService.GetFree(r.Context(), materialID)
	if err != nil {
		h.writeMaterialError(w, err, "Failed to retrieve material")
		return
	}
	writeJSON(w, http.StatusOK, dto.FreeMaterialResponseDTO{
		Material: material,
		FileURLs: urls,
	})
}

func (h *MaterialHandler) writeMaterialError(w http.ResponseWriter, err error, fallback string) {
	if err == service.ErrMaterialNotFound {
		http.Error(w, "Material not found", http.StatusNotFound)
		return
	}
	http.Error(w, fallback+": "+err.Error(), http.StatusInternalServerError)
}
