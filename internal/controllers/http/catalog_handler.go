package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"greenmart/internal/services"
)

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, categories)
}

func (h *Handler) GetCategory(c *gin.Context) {
	category, err := h.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", category)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	req, image, bound := h.bindCategory(c)
	if !bound {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), req.input(), image)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Category created successfully", category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	req, image, bound := h.bindCategory(c)
	if !bound {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), c.Param("id"), req.input(), image)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Category updated successfully", category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *Handler) bindCategory(c *gin.Context) (CategoryRequest, *services.ImageUpload, bool) {
	var req CategoryRequest
	images, err := readImages(c, "image", 1)
	if err != nil {
		respondError(c, err)
		return req, nil, false
	}
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return req, nil, false
	}
	if len(images) == 0 {
		return req, nil, true
	}
	return req, &images[0], true
}

func (h *Handler) ListProducts(c *gin.Context) {
	var q ProductQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.products.List(c.Request.Context(), q.filter())
	if err != nil {
		respondError(c, err)
		return
	}
	paged(c, page)
}

func (h *Handler) FeaturedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.products.Featured(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", product)
}

func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", product)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	req, images, bound := h.bindProduct(c)
	if !bound {
		return
	}
	product, err := h.products.Create(c.Request.Context(), req.input(), images)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Product created successfully", product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	req, images, bound := h.bindProduct(c)
	if !bound {
		return
	}
	product, err := h.products.Update(c.Request.Context(), c.Param("id"), req.input(), images)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product updated successfully", product)
}

func (h *Handler) AddProductImages(c *gin.Context) {
	images, err := readImages(c, "images", services.MaxProductImages)
	if err != nil {
		respondError(c, err)
		return
	}
	product, err := h.products.AddImages(c.Request.Context(), c.Param("id"), images)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Images added successfully", product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *Handler) UpdateStock(c *gin.Context) {
	var req StockRequest
	if !bindBody(c, &req) {
		return
	}
	product, err := h.products.UpdateStock(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Stock updated successfully", product)
}

func (h *Handler) bindProduct(c *gin.Context) (ProductRequest, []services.ImageUpload, bool) {
	var req ProductRequest
	images, err := readImages(c, "images", services.MaxProductImages)
	if err != nil {
		respondError(c, err)
		return req, nil, false
	}
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return req, nil, false
	}
	return req, images, true
}
