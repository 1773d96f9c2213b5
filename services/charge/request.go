package charge

import (
    "encoding/json"
    "math"
    "strconv"
    "strings"

    "efipay-proxy/models"
    "efipay-proxy/utils"
)

// Field aliases, in order of precedence. The first key holding a non-empty
// value wins.
var (
    NomeAliases       = []string{"nome_cliente", "nome"}
    CPFAliases        = []string{"cpf_cliente", "cpf"}
    FranqueadoAliases = []string{"franqueado_codigo", "codigo", "franqueado_id"}
)

// ResolveAlias returns the first non-empty value among keys, stringified.
func ResolveAlias(payload map[string]interface{}, keys ...string) string {
    for _, key := range keys {
        if s := strings.TrimSpace(stringify(payload[key])); s != "" {
            return s
        }
    }
    return ""
}

// ParseChargeRequest normalizes an untrusted payload and rejects it when a
// required field is missing. No network call happens before this passes.
func ParseChargeRequest(payload map[string]interface{}) (*models.ChargeRequest, error) {
    if payload == nil {
        payload = map[string]interface{}{}
    }

    req := &models.ChargeRequest{
        NomeCliente:      ResolveAlias(payload, NomeAliases...),
        CPFCliente:       utils.DigitsOnly(ResolveAlias(payload, CPFAliases...)),
        FranqueadoCodigo: strings.ToUpper(ResolveAlias(payload, FranqueadoAliases...)),
        Descricao:        strings.TrimSpace(stringify(payload["descricao"])),
        ClienteID:        truthyOrNil(payload["cliente_id"]),
        FranqueadoID:     truthyOrNil(payload["franqueado_id"]),
        ReferenteA:       truthyOrNil(payload["referente_a"]),
        UserID:           truthyOrNil(payload["user_id"]),
        Tipo:             truthyOrNil(payload["tipo"]),
    }
    if req.Tipo == nil {
        req.Tipo = "cliente"
    }

    var missing []string
    if req.NomeCliente == "" {
        missing = append(missing, "nome_cliente")
    }
    if req.CPFCliente == "" {
        missing = append(missing, "cpf_cliente")
    }

    text, valor, ok := parseValor(payload["valor"])
    if ok {
        // abaixo de meio centavo arredonda para 0.00
        if amount, err := utils.FormatAmount(text); err != nil || valor <= 0 || amount == "0.00" {
            ok = false
        }
    }
    if !ok {
        missing = append(missing, "valor")
    } else {
        req.Valor = valor
        req.ValorText = text
    }

    if req.FranqueadoCodigo == "" {
        missing = append(missing, "franqueado_codigo")
    }

    if len(missing) > 0 {
        return nil, &models.ValidationError{Fields: missing}
    }
    return req, nil
}

// parseValor accepts JSON numbers and numeric strings.
func parseValor(v interface{}) (string, float64, bool) {
    var text string
    switch val := v.(type) {
    case json.Number:
        text = val.String()
    case float64:
        text = strconv.FormatFloat(val, 'f', -1, 64)
    case int:
        text = strconv.Itoa(val)
    case string:
        text = strings.TrimSpace(val)
    default:
        return "", 0, false
    }

    f, err := strconv.ParseFloat(text, 64)
    if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
        return "", 0, false
    }
    return text, f, true
}

func stringify(v interface{}) string {
    switch val := v.(type) {
    case nil:
        return ""
    case string:
        return val
    case json.Number:
        return val.String()
    case float64:
        return strconv.FormatFloat(val, 'f', -1, 64)
    case int:
        return strconv.Itoa(val)
    case bool:
        if val {
            return "true"
        }
        return ""
    default:
        return ""
    }
}

func truthyOrNil(v interface{}) interface{} {
    switch val := v.(type) {
    case nil:
        return nil
    case string:
        if val == "" {
            return nil
        }
    case bool:
        if !val {
            return nil
        }
    case json.Number:
        if f, err := val.Float64(); err == nil && f == 0 {
            return nil
        }
    case float64:
        if val == 0 {
            return nil
        }
    }
    return v
}
