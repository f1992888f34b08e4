package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/config"
	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

// ConfigController serves configuration-driven home screen content.
type ConfigController struct {
	quotes *services.QuoteService
	clock  services.Clock
}

func NewConfigController(quotes *services.QuoteService, clock services.Clock) *ConfigController {
	return &ConfigController{quotes: quotes, clock: clock}
}

// GetNotice returns announcement/notice content configured via config.
func (c *ConfigController) GetNotice(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"title": cfg.NoticeTitle,
		"html":  utils.Sanitize(cfg.NoticeHTML),
	})
}

// GetQuote returns the quote of the day.
func (c *ConfigController) GetQuote(ctx *gin.Context) {
	day := c.clock.Today()
	utils.Success(ctx, gin.H{"day": day, "quote": c.quotes.Today(day)})
}
