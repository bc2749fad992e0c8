package dto

// LoginReq は/auth/login/エンドポイントのリクエストボディを表します。
type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenPairRes is returned by a successful login.
type TokenPairRes struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
