package models

import "encoding/json"

// ChargeRequest is the normalized form of an inbound payment request.
type ChargeRequest struct {
    Valor            float64
    ValorText        string // representação decimal exata recebida do cliente
    NomeCliente      string
    CPFCliente       string
    FranqueadoCodigo string
    Descricao        string

    // Identificadores opcionais devolvidos sem alteração
    ClienteID    interface{}
    FranqueadoID interface{}
    ReferenteA   interface{}
    UserID       interface{}
    Tipo         interface{}
}

// ChargeResult is the data block returned to the caller after a cob is created.
type ChargeResult struct {
    TxID           string          `json:"txid"`
    Valor          float64         `json:"valor"`
    NomeCliente    string          `json:"nome_cliente"`
    QRCode         *string         `json:"qr_code"`
    QRCodeImage    *string         `json:"qr_code_image"`
    Vencimento     string          `json:"vencimento"`
    EfiPayResponse json.RawMessage `json:"efipay_response"`
    ClienteID      interface{}     `json:"cliente_id"`
    FranqueadoID   interface{}     `json:"franqueado_id"`
    ReferenteA     interface{}     `json:"referente_a"`
    UserID         interface{}     `json:"user_id"`
    Tipo           interface{}     `json:"tipo"`
}

// CobPayload is the body of PUT /v2/cob/{txid}.
type CobPayload struct {
    Calendario         CobCalendario `json:"calendario"`
    Devedor            CobDevedor    `json:"devedor"`
    Valor              CobValor      `json:"valor"`
    Chave              string        `json:"chave"`
    SolicitacaoPagador string        `json:"solicitacaoPagador"`
    InfoAdicionais     []CobInfo     `json:"infoAdicionais"`
}

type CobCalendario struct {
    Expiracao int `json:"expiracao"`
}

type CobDevedor struct {
    Nome string `json:"nome"`
    CPF  string `json:"cpf"`
}

type CobValor struct {
    Original string `json:"original"`
}

type CobInfo struct {
    Nome  string `json:"nome"`
    Valor string `json:"valor"`
}

// CobResponse holds the fields of the provider's cob answer the proxy reads.
type CobResponse struct {
    TxID          string `json:"txid"`
    Status        string `json:"status"`
    PixCopiaECola string `json:"pixCopiaECola"`
    QRCode        string `json:"qrcode"`
}
