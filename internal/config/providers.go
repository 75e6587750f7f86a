package config

// ProviderCredentials holds API credentials for every card/payment provider.
// Missing credentials disable the provider at startup rather than failing requests.
type ProviderCredentials struct {
	StripeSecretKey string

	AirwallexClientID string
	AirwallexAPIKey   string
	AirwallexBaseURL  string

	LithicAPIKey  string
	LithicBaseURL string

	FlutterwaveSecretKey     string
	FlutterwavePublicKey     string
	FlutterwaveEncryptionKey string
	FlutterwaveBaseURL       string

	BinanceAPIKey     string
	BinanceSecretKey  string
	BinanceMerchantID string
	BinanceBaseURL    string
}

// LoadProviderCredentials reads provider credentials from the environment.
func LoadProviderCredentials() ProviderCredentials {
	return ProviderCredentials{
		StripeSecretKey: GetEnv("STRIPE_SECRET_KEY", ""),

		AirwallexClientID: GetEnv("AIRWALLEX_CLIENT_ID", ""),
		AirwallexAPIKey:   GetEnv("AIRWALLEX_API_KEY", ""),
		AirwallexBaseURL:  GetEnv("AIRWALLEX_BASE_URL", "https://api.airwallex.com"),

		LithicAPIKey:  GetEnv("LITHIC_API_KEY", ""),
		LithicBaseURL: GetEnv("LITHIC_BASE_URL", "https://sandbox.lithic.com/v1"),

		FlutterwaveSecretKey:     GetEnv("FLW_SECRET_KEY", ""),
		FlutterwavePublicKey:     GetEnv("FLW_PUBLIC_KEY", ""),
		FlutterwaveEncryptionKey: GetEnv("FLW_ENCRYPTION_KEY", ""),
		FlutterwaveBaseURL:       GetEnv("FLW_BASE_URL", "https://api.flutterwave.com"),

		BinanceAPIKey:     GetEnv("BINANCE_API_KEY", ""),
		BinanceSecretKey:  GetEnv("BINANCE_SECRET_KEY", ""),
		BinanceMerchantID: GetEnv("BINANCE_PAY_MERCHANT_ID", ""),
		BinanceBaseURL:    GetEnv("BINANCE_PAY_BASE_URL", "https://bpay.binanceapi.com"),
	}
}
