package dto

type LoginRequest struct {
	Username string `json:"username"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthTokensResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresInSec int64          `json:"expires_in_sec"`
	Me           AuthMeResponse `json:"me"`
}

type AuthMeResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
