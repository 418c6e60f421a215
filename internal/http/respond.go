package http

import "github.com/gin-gonic/gin"

// envelope es la respuesta JSON uniforme {status, message, data?}, con el
// status repetido en el cuerpo.
type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func respondAbort(c *gin.Context, status int, message string, data any) {
	respond(c, status, message, data)
	c.Abort()
}
