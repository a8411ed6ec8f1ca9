package handler

import (
	"net/http"

	"mini_shop/internal/domain/product/service"
	"mini_shop/internal/pkg/validate"
	"mini_shop/pkg/response"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// CreateProductInput 新增商品输入，所有字段必填
type CreateProductInput struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Price       decimal.Decimal `json:"price" swaggertype:"number"`
	Description string          `json:"description" binding:"required"`
	Stock       *int            `json:"stock" binding:"required,gte=0"`
}

// UpdateProductInput 修改商品输入
type UpdateProductInput struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Price       decimal.Decimal `json:"price" swaggertype:"number"`
	Description string          `json:"description"`
}

// StockInput 库存修改输入
type StockInput struct {
	Stock *int `json:"stock" binding:"required"`
}

// ListProducts 商品列表
// @Summary 商品列表
// @Tags Product
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Product}
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, product)
}

// CreateProduct 新增商品 (管理员)
// @Summary 新增商品
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body CreateProductInput true "商品信息"
// @Success 201 {object} response.Response{data=model.Product}
// @Router /admin/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), service.CreateParams{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Stock:       *input.Stock,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Product added successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, service.UpdateParams{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Product updated successfully", product)
}

// UpdateStock 修改库存 (管理员)
// @Summary 修改库存
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param input body StockInput true "库存"
// @Success 200 {object} response.Response{data=model.Product}
// @Router /admin/products/{id}/stock [put]
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	var input StockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	product, err := h.service.UpdateStock(c.Request.Context(), id, *input.Stock)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Stock updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Product deleted successfully", nil)
}
