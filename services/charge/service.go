package charge

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "strconv"
    "time"

    "efipay-proxy/models"
    "efipay-proxy/utils"
)

const (
    ExpirationSeconds = 3600
    MaxDescription    = 140
    MaxInfoValue      = 50
    TxIDPrefix        = "txid-na-hora-"
)

// Authenticator yields a bearer token for the provider.
type Authenticator interface {
    Token(ctx context.Context) (string, error)
    Invalidate(ctx context.Context)
}

// Provider creates immediate charges.
type Provider interface {
    CreateCob(ctx context.Context, token, txid string, payload *models.CobPayload) (*models.ProviderResponse, error)
}

type Service struct {
    auth      Authenticator
    provider  Provider
    pixKey    string
    planLabel string
    now       func() time.Time
}

func NewService(auth Authenticator, provider Provider, pixKey, planLabel string) *Service {
    return &Service{
        auth:      auth,
        provider:  provider,
        pixKey:    pixKey,
        planLabel: planLabel,
        now:       time.Now,
    }
}

// NewTxID builds a locally unique transaction id:
// txid-na-hora-<unix millis>-<6 lowercase alnum>.
func NewTxID(now time.Time) string {
    return TxIDPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + utils.GenerateSuffix(6)
}

// CreateCharge validates payload, creates a cob at the provider and shapes the result.
func (s *Service) CreateCharge(ctx context.Context, payload map[string]interface{}) (*models.ChargeResult, error) {
    req, err := ParseChargeRequest(payload)
    if err != nil {
        return nil, err
    }

    token, err := s.auth.Token(ctx)
    if err != nil {
        log.Printf("Error obtaining efipay token: %v", err)
        return nil, err
    }

    txid := NewTxID(s.now())
    cob, err := s.BuildCobPayload(req)
    if err != nil {
        return nil, err
    }

    log.Printf("Creating cob %s for franqueado %s (cpf %s, valor %s)",
        txid, req.FranqueadoCodigo, utils.MaskCPF(req.CPFCliente), cob.Valor.Original)

    resp, err := s.provider.CreateCob(ctx, token, txid, cob)
    if err != nil {
        return nil, &models.UpstreamError{Stage: "charge", Err: err}
    }

    if !resp.OK() {
        if resp.Status == http.StatusUnauthorized {
            s.auth.Invalidate(ctx)
        }
        log.Printf("EfiPay rejected cob %s with status %d", txid, resp.Status)
        return nil, &models.UpstreamError{Stage: "charge", Status: resp.Status, Body: string(resp.Body)}
    }

    var parsed models.CobResponse
    if err := json.Unmarshal(resp.Body, &parsed); err != nil {
        return nil, &models.UpstreamError{
            Stage:  "charge",
            Status: resp.Status,
            Body:   string(resp.Body),
            Err:    fmt.Errorf("error decoding cob response: %v", err),
        }
    }

    log.Printf("Cob %s created", txid)

    return &models.ChargeResult{
        TxID:           txid,
        Valor:          req.Valor,
        NomeCliente:    req.NomeCliente,
        QRCode:         optional(parsed.PixCopiaECola),
        QRCodeImage:    optional(parsed.QRCode),
        Vencimento:     utils.FormatISO(utils.ExpiresIn(s.now(), ExpirationSeconds)),
        EfiPayResponse: json.RawMessage(resp.Body),
        ClienteID:      req.ClienteID,
        FranqueadoID:   req.FranqueadoID,
        ReferenteA:     req.ReferenteA,
        UserID:         req.UserID,
        Tipo:           req.Tipo,
    }, nil
}

// BuildCobPayload shapes the provider body for a validated request.
func (s *Service) BuildCobPayload(req *models.ChargeRequest) (*models.CobPayload, error) {
    amount, err := utils.FormatAmount(req.ValorText)
    if err != nil {
        return nil, &models.ValidationError{Fields: []string{"valor"}, Message: err.Error()}
    }

    description := req.Descricao
    if description == "" {
        description = fmt.Sprintf("Plano %s para %s", s.planLabel, req.NomeCliente)
    }

    return &models.CobPayload{
        Calendario:         models.CobCalendario{Expiracao: ExpirationSeconds},
        Devedor:            models.CobDevedor{Nome: req.NomeCliente, CPF: req.CPFCliente},
        Valor:              models.CobValor{Original: amount},
        Chave:              s.pixKey,
        SolicitacaoPagador: utils.Truncate(description, MaxDescription),
        InfoAdicionais: []models.CobInfo{
            {Nome: "Cliente", Valor: utils.Truncate(req.NomeCliente, MaxInfoValue)},
            {Nome: "Franqueado", Valor: req.FranqueadoCodigo},
            {Nome: "Plano", Valor: s.planLabel},
        },
    }, nil
}

func optional(s string) *string {
    if s == "" {
        return nil
    }
    return &s
}
