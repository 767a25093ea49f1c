// controllers/article_controller.go
package controllers

import (
	"net/http"

	"magacin_backend/app"
	"magacin_backend/db"
	"magacin_backend/feed"
	"magacin_backend/models"
	"magacin_backend/stock"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ArticleController struct{ *Srv }

func NewArticleController(s *Srv) *ArticleController { return &ArticleController{Srv: s} }

// articleView 在 Article 上挂一个按阈值算好的状态，表格直接着色用。
type articleView struct {
	models.Article
	Status stock.Status `json:"status"`
}

func (ac *ArticleController) view(a models.Article) articleView {
	return articleView{Article: a, Status: stock.Classify(a.Available, ac.Cfg.LowThreshold)}
}

type createArticleRequest struct {
	Code     string  `json:"code" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Location string  `json:"location" binding:"required"`
	Project  string  `json:"project"`
	Supplier string  `json:"supplier"`
	Price    float64 `json:"price" binding:"gte=0"`
	Quantity int     `json:"quantity" binding:"gte=0"`
}

// POST /api/articles —— 新建默认 reserved = 0，available 由网关派生
func (ac *ArticleController) Create(c *gin.Context) {
	var in createArticleRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	a := &models.Article{
		ID:       uuid.NewString(),
		Code:     in.Code,
		Name:     in.Name,
		Location: in.Location,
		Project:  in.Project,
		Supplier: in.Supplier,
		Price:    decimal.NewFromFloat(in.Price),
		Quantity: in.Quantity,
		Reserved: 0,
	}
	if err := ac.Repo.CreateArticle(c.Request.Context(), a); err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	ac.publish(c.Request.Context(), models.ArticleTable, feed.ActionInsert, a.ID)
	c.JSON(http.StatusCreated, ac.view(*a))
}

// GET /api/articles
func (ac *ArticleController) List(c *gin.Context) {
	articles, err := ac.Repo.ListArticles(c.Request.Context())
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	views := make([]articleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, ac.view(a))
	}
	c.JSON(http.StatusOK, app.H{"articles": views})
}

// GET /api/articles/:id
func (ac *ArticleController) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	a, err := ac.Repo.FindArticleByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"article": ac.view(*a)})
}

type updateArticleRequest struct {
	Code     *string  `json:"code"`
	Name     *string  `json:"name"`
	Location *string  `json:"location"`
	Project  *string  `json:"project"`
	Supplier *string  `json:"supplier"`
	Price    *float64 `json:"price" binding:"omitempty,gte=0"`
	Quantity *int     `json:"quantity" binding:"omitempty,gte=0"`
	Reserved *int     `json:"reserved" binding:"omitempty,gte=0"`
}

func dbArticlePatch(in updateArticleRequest) db.ArticlePatch {
	p := db.ArticlePatch{
		Code:     in.Code,
		Name:     in.Name,
		Location: in.Location,
		Project:  in.Project,
		Supplier: in.Supplier,
		Quantity: in.Quantity,
		Reserved: in.Reserved,
	}
	if in.Price != nil {
		d := decimal.NewFromFloat(*in.Price)
		p.Price = &d
	}
	return p
}

// PUT /api/articles/:id —— 部分更新；available 不可提交，永远重算
func (ac *ArticleController) Update(c *gin.Context) {
	id := c.Param("id")
	var in updateArticleRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	patch := dbArticlePatch(in)
	a, err := ac.Repo.UpdateArticle(c.Request.Context(), id, patch)
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	ac.publish(c.Request.Context(), models.ArticleTable, feed.ActionUpdate, id)
	c.JSON(http.StatusOK, ac.view(*a))
}

// DELETE /api/articles/:id
func (ac *ArticleController) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := ac.Repo.DeleteArticle(c.Request.Context(), id); err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	ac.publish(c.Request.Context(), models.ArticleTable, feed.ActionDelete, id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

type adjustStockRequest struct {
	QuantityDelta int `json:"quantityDelta"`
	ReservedDelta int `json:"reservedDelta"`
}

// POST /api/articles/:id/adjust —— 事务性的库存增量调整
func (ac *ArticleController) Adjust(c *gin.Context) {
	id := c.Param("id")
	var in adjustStockRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	a, err := ac.Repo.AdjustStock(c.Request.Context(), id, in.QuantityDelta, in.ReservedDelta)
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	ac.publish(c.Request.Context(), models.ArticleTable, feed.ActionUpdate, id)
	c.JSON(http.StatusOK, ac.view(*a))
}
