package wire

import "google.golang.org/protobuf/encoding/protowire"

// consumeTag reads one field tag, returning the remaining bytes.
func consumeTag(msg string, b []byte) (protowire.Number, protowire.Type, []byte, error) {
	num, typ, n := protowire.ConsumeTag(b)
	if n < 0 {
		return 0, 0, nil, &DecodeError{Message: msg, Offset: 0, Reason: "malformed tag"}
	}
	return num, typ, b[n:], nil
}

// keepUnknown appends the raw bytes of an unrecognized field to unknown so
// they survive a subsequent Marshal, and returns the remaining input.
func keepUnknown(msg string, unknown []byte, num protowire.Number, typ protowire.Type, b []byte) ([]byte, []byte, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return nil, nil, &DecodeError{Message: msg, Offset: 0, Reason: "malformed field value"}
	}
	unknown = append(unknown, protowire.AppendTag(nil, num, typ)...)
	unknown = append(unknown, b[:n]...)
	return unknown, b[n:], nil
}

// Unmarshal decodes a ContentPart; exactly one of Text/ImageURL ends up set.
func (p *ContentPart) Unmarshal(b []byte) error {
	const msg = "ContentPart"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldContentPartText:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad text field"}
			}
			p.Text = string(v)
			b = b[n:]
		case fieldContentPartImageURL:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad image_url field"}
			}
			p.ImageURL = string(v)
			b = b[n:]
		default:
			_, rest, err := keepUnknown(msg, nil, num, typ, b)
			if err != nil {
				return err
			}
			b = rest
		}
	}
	return nil
}

// Unmarshal decodes a ChatMessage, preserving any unrecognized fields.
func (m *ChatMessage) Unmarshal(b []byte) error {
	const msg = "ChatMessage"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldChatMessageRole:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad role field"}
			}
			m.Role = Role(v)
			b = b[n:]
		case fieldChatMessageParts:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad parts field"}
			}
			var part ContentPart
			if err := part.Unmarshal(v); err != nil {
				return err
			}
			m.Parts = append(m.Parts, part)
			b = b[n:]
		default:
			m.unknown, b, err = keepUnknown(msg, m.unknown, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *ChatRequestFlags) unmarshal(b []byte) error {
	const msg = "ChatRequestFlags"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldFlagsEnableSlowPool:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad enable_slow_pool"}
			}
			f.EnableSlowPool = v != 0
			b = b[n:]
		case fieldFlagsIncludeWebRefs:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad include_web_references"}
			}
			f.IncludeWebReferences = v != 0
			b = b[n:]
		case fieldFlagsUsageCheckModels:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad usage_check_models"}
			}
			f.UsageCheckModels = UsageCheckModels(v)
			b = b[n:]
		case fieldFlagsUsageCheckModelNames:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad usage_check_models name"}
			}
			f.UsageCheckModelsNames = append(f.UsageCheckModelsNames, string(v))
			b = b[n:]
		default:
			var discard []byte
			discard, b, err = keepUnknown(msg, discard, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Unmarshal decodes the outer chat request message.
func (r *ChatRequest) Unmarshal(b []byte) error {
	const msg = "ChatRequest"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldChatReqStream:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad stream field"}
			}
			r.Stream = v != 0
			b = b[n:]
		case fieldChatReqRequestID:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad request_id"}
			}
			r.RequestID = string(v)
			b = b[n:]
		case fieldChatReqModelName:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad model_name"}
			}
			r.ModelName = string(v)
			b = b[n:]
		case fieldChatReqSessionID:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad session_id"}
			}
			r.SessionID = string(v)
			b = b[n:]
		case fieldChatReqConfigVersion:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad config_version"}
			}
			r.ConfigVersion = string(v)
			b = b[n:]
		case fieldChatReqMessages:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad messages entry"}
			}
			var cm ChatMessage
			if err := cm.Unmarshal(v); err != nil {
				return err
			}
			r.Messages = append(r.Messages, cm)
			b = b[n:]
		case fieldChatReqFlags:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad flags"}
			}
			if err := r.Flags.unmarshal(v); err != nil {
				return err
			}
			b = b[n:]
		default:
			r.unknown, b, err = keepUnknown(msg, r.unknown, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Unmarshal decodes a StreamMessage, setting Kind to whichever oneof case
// was present. Unknown fields are preserved for re-encoding.
func (m *StreamMessage) Unmarshal(b []byte) error {
	const msg = "StreamMessage"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldStreamMsgTextDelta:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad text_delta"}
			}
			if err := m.TextDelta.unmarshal(v); err != nil {
				return err
			}
			m.Kind = StreamKindTextDelta
			b = b[n:]
		case fieldStreamMsgUsage:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad usage"}
			}
			if err := m.Usage.unmarshal(v); err != nil {
				return err
			}
			m.Kind = StreamKindUsage
			b = b[n:]
		case fieldStreamMsgServerInfo:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad server_info"}
			}
			if err := m.ServerInfo.unmarshal(v); err != nil {
				return err
			}
			m.Kind = StreamKindServerInfo
			b = b[n:]
		case fieldStreamMsgEndOfTurn:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad end_of_turn"}
			}
			if err := m.EndOfTurn.unmarshal(v); err != nil {
				return err
			}
			m.Kind = StreamKindEndOfTurn
			b = b[n:]
		default:
			m.unknown, b, err = keepUnknown(msg, m.unknown, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *TextDelta) unmarshal(b []byte) error {
	const msg = "TextDelta"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldTextDeltaContent:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad content"}
			}
			t.Content = string(v)
			b = b[n:]
		case fieldTextDeltaSubtype:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad subtype"}
			}
			t.Subtype = MessageSubtype(v)
			b = b[n:]
		default:
			var discard []byte
			discard, b, err = keepUnknown(msg, discard, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *Usage) unmarshal(b []byte) error {
	const msg = "Usage"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldUsageInput:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad input_tokens"}
			}
			u.InputTokens = uint32(v)
			b = b[n:]
		case fieldUsageOutput:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad output_tokens"}
			}
			u.OutputTokens = uint32(v)
			b = b[n:]
		case fieldUsageTruncated:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad truncated"}
			}
			u.Truncated = v != 0
			b = b[n:]
		default:
			var discard []byte
			discard, b, err = keepUnknown(msg, discard, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ServerInfo) unmarshal(b []byte) error {
	const msg = "ServerInfo"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldServerInfoRequestID:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad server_request_id"}
			}
			s.ServerRequestID = string(v)
			b = b[n:]
		case fieldServerInfoModelUsed:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad model_used"}
			}
			s.ModelUsed = string(v)
			b = b[n:]
		default:
			var discard []byte
			discard, b, err = keepUnknown(msg, discard, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *EndOfTurn) unmarshal(b []byte) error {
	const msg = "EndOfTurn"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldEndOfTurnFinishReason:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad finish_reason"}
			}
			e.FinishReason = FinishReason(v)
			b = b[n:]
		default:
			var discard []byte
			discard, b, err = keepUnknown(msg, discard, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *ModelInfo) unmarshal(b []byte) error {
	const msg = "ModelInfo"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldModelInfoName:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad name"}
			}
			m.Name = string(v)
			b = b[n:]
		case fieldModelInfoNightly:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad nightly"}
			}
			m.Nightly = v != 0
			b = b[n:]
		case fieldModelInfoLongContext:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad long_context"}
			}
			m.LongContext = v != 0
			b = b[n:]
		default:
			var discard []byte
			discard, b, err = keepUnknown(msg, discard, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Unmarshal decodes the model catalog response.
func (l *ModelList) Unmarshal(b []byte) error {
	const msg = "ModelList"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldModelListModels:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad models entry"}
			}
			var mi ModelInfo
			if err := mi.unmarshal(v); err != nil {
				return err
			}
			l.Models = append(l.Models, mi)
			b = b[n:]
		default:
			l.unknown, b, err = keepUnknown(msg, l.unknown, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Unmarshal decodes a Copilot++ completion request.
func (r *CppRequest) Unmarshal(b []byte) error {
	const msg = "CppRequest"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldCppReqRequestID:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad request_id"}
			}
			r.RequestID = string(v)
			b = b[n:]
		case fieldCppReqSessionID:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad session_id"}
			}
			r.SessionID = string(v)
			b = b[n:]
		case fieldCppReqConfigVersion:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad config_version"}
			}
			r.ConfigVersion = string(v)
			b = b[n:]
		case fieldCppReqPrefix:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad prefix"}
			}
			r.Prefix = string(v)
			b = b[n:]
		case fieldCppReqSuffix:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad suffix"}
			}
			r.Suffix = string(v)
			b = b[n:]
		case fieldCppReqLanguage:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad language"}
			}
			r.Language = string(v)
			b = b[n:]
		default:
			r.unknown, b, err = keepUnknown(msg, r.unknown, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *CppCompletion) unmarshal(b []byte) error {
	const msg = "CppCompletion"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldCppCompletionText:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad text"}
			}
			c.Text = string(v)
			b = b[n:]
		case fieldCppCompletionScore:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad score"}
			}
			c.Score = float32frombits(v)
			b = b[n:]
		default:
			var discard []byte
			discard, b, err = keepUnknown(msg, discard, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Unmarshal decodes a Copilot++ completion response.
func (r *CppResponse) Unmarshal(b []byte) error {
	const msg = "CppResponse"
	for len(b) > 0 {
		num, typ, rest, err := consumeTag(msg, b)
		if err != nil {
			return err
		}
		b = rest
		switch num {
		case fieldCppRespCompletions:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return &DecodeError{Message: msg, Reason: "bad completions entry"}
			}
			var c CppCompletion
			if err := c.unmarshal(v); err != nil {
				return err
			}
			r.Completions = append(r.Completions, c)
			b = b[n:]
		default:
			r.unknown, b, err = keepUnknown(msg, r.unknown, num, typ, b)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
