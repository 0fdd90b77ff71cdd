package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tigersai/internal/collaborator"
	"tigersai/internal/middleware"
	"tigersai/internal/service"
)

// SubnetHandler 处理子网计算请求。
type SubnetHandler struct {
	subnetService service.SubnetService
}

// NewSubnetHandler 创建一个新的 SubnetHandler 实例。
func NewSubnetHandler(subnetService service.SubnetService) *SubnetHandler {
	return &SubnetHandler{subnetService: subnetService}
}

// SubnetRequest 是子网计算请求体。
type SubnetRequest struct {
	IPAddress  string `json:"ip_address" form:"ip_address"`
	SubnetMask string `json:"subnet_mask" form:"subnet_mask"`
}

// Calculate 返回指定地址族的处理函数，脚本输出的 JSON 原样返回。
func (h *SubnetHandler) Calculate(family collaborator.Family) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubnetRequest
		_ = c.ShouldBind(&req)
		out, err := h.subnetService.Calculate(c.Request.Context(), middleware.CurrentSession(c), family, req.IPAddress, req.SubnetMask)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", out)
	}
}
