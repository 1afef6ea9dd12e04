package protocol

import (
	"encoding/json"
	"errors"
)

// ErrorCoder 携带协议错误码的错误。游戏内的业务错误实现该接口，
// 服务端用 NewErrorFromError 把任意 error 折叠为统一的错误消息。
type ErrorCoder interface {
	error
	ErrorCode() int
}

// NewMessage 创建一个新消息
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	var data json.RawMessage
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return &Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// MustNewMessage 创建消息，失败时 panic。只用于编码自有类型，
// 这些类型序列化失败属于编程错误。
func MustNewMessage(msgType MessageType, payload any) *Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 将消息编码为 JSON 字节
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode 从 JSON 字节解码消息。缺少类型字段的消息视为非法。
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, errors.New("消息缺少类型")
	}
	return &msg, nil
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// NewErrorMessage 按错误码生成错误消息，码表里没有的码归入未知错误文案
func NewErrorMessage(code int) *Message {
	text, ok := ErrorMessages[code]
	if !ok {
		text = ErrorMessages[ErrCodeUnknown]
	}
	return MustNewMessage(MsgError, ErrorPayload{
		Code:    code,
		Message: text,
	})
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *Message {
	return MustNewMessage(MsgError, ErrorPayload{
		Code:    code,
		Message: text,
	})
}

// NewErrorFromError 把任意错误折叠为错误消息：带码的走码表文案，
// 其余归入未知错误并透传原始文本
func NewErrorFromError(err error) *Message {
	var coder ErrorCoder
	if errors.As(err, &coder) {
		return NewErrorMessage(coder.ErrorCode())
	}
	return NewErrorMessageWithText(ErrCodeUnknown, err.Error())
}
