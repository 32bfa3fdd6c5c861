package dto

// IntegrationStatus reports whether a provider is connected for the owner.
type IntegrationStatus struct {
	AppType     string `json:"appType"`
	IsConnected bool   `json:"isConnected"`
}

// ConnectURLResponse carries the provider consent URL to redirect to.
type ConnectURLResponse struct {
	URL string `json:"url"`
}
