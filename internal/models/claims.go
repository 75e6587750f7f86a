package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	// Admin permissions
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	// Wallet permissions
	PermissionWalletRead  = "wallet:read"
	PermissionWalletWrite = "wallet:write"

	// Card permissions
	PermissionCardRead   = "card:read"
	PermissionCardWrite  = "card:write"
	PermissionCardDetail = "card:detail"

	// Deposit permissions
	PermissionDepositWrite = "deposit:write"

	// Webhook permissions
	PermissionWebhookManage = "webhook:manage"

	// User permissions
	PermissionChangePassword = "user:change-password"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case "admin":
		return []string{
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionCardRead,
			PermissionCardWrite,
			PermissionCardDetail,
			PermissionDepositWrite,
			PermissionWebhookManage,
			PermissionChangePassword,
			PermissionReadAdmin,
			PermissionWriteAdmin,
		}
	case "user":
		return []string{
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionCardRead,
			PermissionCardWrite,
			PermissionCardDetail,
			PermissionDepositWrite,
			PermissionChangePassword,
		}
	default:
		return []string{}
	}
}
