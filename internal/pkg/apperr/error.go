package apperr

import "fmt"

const (
	invalidArgumentCode = "INVALID_ARGUMENT"
	configCode          = "CONFIG_ERROR"
	watermarkStoreCode  = "WATERMARK_STORE_ERROR"
	chainRpcCode        = "CHAIN_RPC_ERROR"
	chainConnCode       = "CHAIN_CONNECTION_ERROR"
	publishCode         = "PUBLISH_ERROR"
	encodingCode        = "ENCODING_ERROR"
)

type messageCause struct {
	Msg   string
	Cause error
}

func (e *messageCause) Message() string { return e.Msg }
func (e *messageCause) Unwrap() error   { return e.Cause }

func formatError(code, msg string, cause error) string {
	if cause != nil {
		return fmt.Sprintf("[%s] %s: %v", code, msg, cause)
	}
	return fmt.Sprintf("[%s] %s", code, msg)
}

type InvalidArgErr struct {
	messageCause
}

func NewInvalidArgErr(msg string, cause error) *InvalidArgErr {
	return &InvalidArgErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *InvalidArgErr) Error() string { return formatError(invalidArgumentCode, e.Msg, e.Cause) }
func (e *InvalidArgErr) Code() string  { return invalidArgumentCode }

// ConfigErr reports missing or invalid startup configuration. Always fatal.
type ConfigErr struct {
	messageCause
}

func NewConfigErr(msg string, cause error) *ConfigErr {
	return &ConfigErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *ConfigErr) Error() string { return formatError(configCode, e.Msg, e.Cause) }
func (e *ConfigErr) Code() string  { return configCode }

// WatermarkStoreErr reports an unexpected fault of the watermark storage cell.
type WatermarkStoreErr struct {
	messageCause
}

func NewWatermarkStoreErr(msg string, cause error) *WatermarkStoreErr {
	return &WatermarkStoreErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *WatermarkStoreErr) Error() string { return formatError(watermarkStoreCode, e.Msg, e.Cause) }
func (e *WatermarkStoreErr) Code() string  { return watermarkStoreCode }

// ChainRpcErr reports a JSON-RPC level failure, including "not found" results.
type ChainRpcErr struct {
	messageCause
}

func NewChainRpcErr(msg string, cause error) *ChainRpcErr {
	return &ChainRpcErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *ChainRpcErr) Error() string { return formatError(chainRpcCode, e.Msg, e.Cause) }
func (e *ChainRpcErr) Code() string  { return chainRpcCode }

// ChainConnErr reports a transport failure talking to the chain node.
type ChainConnErr struct {
	messageCause
}

func NewChainConnErr(msg string, cause error) *ChainConnErr {
	return &ChainConnErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *ChainConnErr) Error() string { return formatError(chainConnCode, e.Msg, e.Cause) }
func (e *ChainConnErr) Code() string  { return chainConnCode }

type PublishErr struct {
	messageCause
}

func NewPublishErr(msg string, cause error) *PublishErr {
	return &PublishErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *PublishErr) Error() string { return formatError(publishCode, e.Msg, e.Cause) }
func (e *PublishErr) Code() string  { return publishCode }

// EncodingErr reports a transaction field with no JSON rendering rule. Always fatal.
type EncodingErr struct {
	messageCause
}

func NewEncodingErr(msg string, cause error) *EncodingErr {
	return &EncodingErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *EncodingErr) Error() string { return formatError(encodingCode, e.Msg, e.Cause) }
func (e *EncodingErr) Code() string  { return encodingCode }
