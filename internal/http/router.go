package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/http/middleware"
	"github.com/iyhunko/product-catalog/internal/metrics"
)

func InitRouter(server *gin.Engine, con *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	// Recovery runs after RequestID so a recovered panic is logged with the request id
	server.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.CORS(),
		metrics.Middleware(),
	)

	server.GET("/ping", con.Ping)
	server.GET("/health", con.Health)

	// Product endpoints
	products := server.Group("/products")
	{
		products.GET("", productCtr.ListProducts)
		products.POST("", productCtr.CreateProduct)
		products.GET("/:id", productCtr.GetProduct)
		products.PATCH("/:id", productCtr.UpdateProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
	}

	return server
}
