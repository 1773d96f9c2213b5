package models

// APIResponse is the envelope every route answers with.
type APIResponse struct {
    Success bool        `json:"success"`
    Data    interface{} `json:"data,omitempty"`
    Error   string      `json:"error,omitempty"`
    Details string      `json:"details,omitempty"`
    Stage   string      `json:"stage,omitempty"`
}

// ProviderResponse representa a resposta bruta de uma chamada à EfiPay
type ProviderResponse struct {
    Status int
    Body   []byte
}

// OK reports whether the provider answered with a 2xx status.
func (r *ProviderResponse) OK() bool {
    return r.Status >= 200 && r.Status < 300
}
