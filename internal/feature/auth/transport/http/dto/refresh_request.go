package dto

// RefreshReq carries a refresh token. It is the body of both
// /auth/token/refresh/ and /auth/logout/.
type RefreshReq struct {
	Refresh string `json:"refresh" binding:"required"`
}

// RefreshRes represents the response for a successful token refresh.
type RefreshRes struct {
	Access string `json:"access"`
}
