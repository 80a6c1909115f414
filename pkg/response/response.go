package response

import "github.com/gin-gonic/gin"

// ErrorBody is the error envelope the read API returns. Successful
// responses are the raw JSON payload (the product endpoints return bare
// arrays), so only failures get a wrapper.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Fail writes the error envelope with the given status.
func Fail(c *gin.Context, status int, message, details string) {
	c.JSON(status, ErrorBody{Error: message, Details: details})
}

// AbortFail writes the error envelope and aborts the handler chain.
func AbortFail(c *gin.Context, status int, message, details string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: message, Details: details})
}
