package wire

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers. These are a from-scratch schema (see doc.go) and are
// assigned once here; decode.go must match them exactly.
const (
	fieldContentPartText     protowire.Number = 1
	fieldContentPartImageURL protowire.Number = 2

	fieldChatMessageRole  protowire.Number = 1
	fieldChatMessageParts protowire.Number = 2

	fieldFlagsEnableSlowPool       protowire.Number = 1
	fieldFlagsIncludeWebRefs       protowire.Number = 2
	fieldFlagsUsageCheckModels     protowire.Number = 3
	fieldFlagsUsageCheckModelNames protowire.Number = 4

	fieldChatReqStream        protowire.Number = 1
	fieldChatReqRequestID     protowire.Number = 2
	fieldChatReqModelName     protowire.Number = 3
	fieldChatReqSessionID     protowire.Number = 4
	fieldChatReqConfigVersion protowire.Number = 5
	fieldChatReqMessages      protowire.Number = 6
	fieldChatReqFlags         protowire.Number = 7

	fieldTextDeltaContent protowire.Number = 1
	fieldTextDeltaSubtype protowire.Number = 2

	fieldUsageInput     protowire.Number = 1
	fieldUsageOutput    protowire.Number = 2
	fieldUsageTruncated protowire.Number = 3

	fieldServerInfoRequestID protowire.Number = 1
	fieldServerInfoModelUsed protowire.Number = 2

	fieldEndOfTurnFinishReason protowire.Number = 1

	fieldStreamMsgTextDelta  protowire.Number = 1
	fieldStreamMsgUsage      protowire.Number = 2
	fieldStreamMsgServerInfo protowire.Number = 3
	fieldStreamMsgEndOfTurn  protowire.Number = 4

	fieldModelInfoName        protowire.Number = 1
	fieldModelInfoNightly     protowire.Number = 2
	fieldModelInfoLongContext protowire.Number = 3

	fieldModelListModels protowire.Number = 1

	fieldCppReqRequestID     protowire.Number = 1
	fieldCppReqSessionID     protowire.Number = 2
	fieldCppReqConfigVersion protowire.Number = 3
	fieldCppReqPrefix        protowire.Number = 4
	fieldCppReqSuffix        protowire.Number = 5
	fieldCppReqLanguage      protowire.Number = 6

	fieldCppCompletionText  protowire.Number = 1
	fieldCppCompletionScore protowire.Number = 2

	fieldCppRespCompletions protowire.Number = 1
)

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendEmbedded(b []byte, num protowire.Number, payload []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

// Marshal encodes p as the vendor expects: text XOR image_url.
func (p ContentPart) Marshal() []byte {
	var b []byte
	if p.isImage() {
		b = appendStringField(b, fieldContentPartImageURL, p.ImageURL)
	} else {
		b = appendStringField(b, fieldContentPartText, p.Text)
	}
	return b
}

// Marshal encodes m, including any parts.
func (m ChatMessage) Marshal() []byte {
	b := appendVarintField(nil, fieldChatMessageRole, uint64(m.Role))
	for _, part := range m.Parts {
		b = appendEmbedded(b, fieldChatMessageParts, part.Marshal())
	}
	b = append(b, m.unknown...)
	return b
}

func (f ChatRequestFlags) marshal() []byte {
	b := appendBool(nil, fieldFlagsEnableSlowPool, f.EnableSlowPool)
	b = appendBool(b, fieldFlagsIncludeWebRefs, f.IncludeWebReferences)
	b = appendVarintField(b, fieldFlagsUsageCheckModels, uint64(f.UsageCheckModels))
	for _, name := range f.UsageCheckModelsNames {
		b = appendStringField(b, fieldFlagsUsageCheckModelNames, name)
	}
	return b
}

// Marshal encodes the full outer chat request message.
func (r ChatRequest) Marshal() []byte {
	b := appendBool(nil, fieldChatReqStream, r.Stream)
	b = appendStringField(b, fieldChatReqRequestID, r.RequestID)
	b = appendStringField(b, fieldChatReqModelName, r.ModelName)
	b = appendStringField(b, fieldChatReqSessionID, r.SessionID)
	b = appendStringField(b, fieldChatReqConfigVersion, r.ConfigVersion)
	for _, msg := range r.Messages {
		b = appendEmbedded(b, fieldChatReqMessages, msg.Marshal())
	}
	b = appendEmbedded(b, fieldChatReqFlags, r.Flags.marshal())
	b = append(b, r.unknown...)
	return b
}

func (t TextDelta) marshal() []byte {
	b := appendStringField(nil, fieldTextDeltaContent, t.Content)
	b = appendVarintField(b, fieldTextDeltaSubtype, uint64(t.Subtype))
	return b
}

func (u Usage) marshal() []byte {
	b := appendVarintField(nil, fieldUsageInput, uint64(u.InputTokens))
	b = appendVarintField(b, fieldUsageOutput, uint64(u.OutputTokens))
	b = appendBool(b, fieldUsageTruncated, u.Truncated)
	return b
}

func (s ServerInfo) marshal() []byte {
	b := appendStringField(nil, fieldServerInfoRequestID, s.ServerRequestID)
	b = appendStringField(b, fieldServerInfoModelUsed, s.ModelUsed)
	return b
}

func (e EndOfTurn) marshal() []byte {
	return appendVarintField(nil, fieldEndOfTurnFinishReason, uint64(e.FinishReason))
}

// Marshal encodes whichever case Kind selects.
func (m StreamMessage) Marshal() []byte {
	var b []byte
	switch m.Kind {
	case StreamKindTextDelta:
		b = appendEmbedded(b, fieldStreamMsgTextDelta, m.TextDelta.marshal())
	case StreamKindUsage:
		b = appendEmbedded(b, fieldStreamMsgUsage, m.Usage.marshal())
	case StreamKindServerInfo:
		b = appendEmbedded(b, fieldStreamMsgServerInfo, m.ServerInfo.marshal())
	case StreamKindEndOfTurn:
		b = appendEmbedded(b, fieldStreamMsgEndOfTurn, m.EndOfTurn.marshal())
	}
	b = append(b, m.unknown...)
	return b
}

func (m ModelInfo) marshal() []byte {
	b := appendStringField(nil, fieldModelInfoName, m.Name)
	b = appendBool(b, fieldModelInfoNightly, m.Nightly)
	b = appendBool(b, fieldModelInfoLongContext, m.LongContext)
	return b
}

// Marshal encodes the model catalog response.
func (l ModelList) Marshal() []byte {
	var b []byte
	for _, m := range l.Models {
		b = appendEmbedded(b, fieldModelListModels, m.marshal())
	}
	b = append(b, l.unknown...)
	return b
}

// Marshal encodes a Copilot++ completion request.
func (r CppRequest) Marshal() []byte {
	b := appendStringField(nil, fieldCppReqRequestID, r.RequestID)
	b = appendStringField(b, fieldCppReqSessionID, r.SessionID)
	b = appendStringField(b, fieldCppReqConfigVersion, r.ConfigVersion)
	b = appendStringField(b, fieldCppReqPrefix, r.Prefix)
	b = appendStringField(b, fieldCppReqSuffix, r.Suffix)
	b = appendStringField(b, fieldCppReqLanguage, r.Language)
	b = append(b, r.unknown...)
	return b
}

func (c CppCompletion) marshal() []byte {
	b := appendStringField(nil, fieldCppCompletionText, c.Text)
	if c.Score != 0 {
		b = protowire.AppendTag(b, fieldCppCompletionScore, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, float32bits(c.Score))
	}
	return b
}

// Marshal encodes a Copilot++ completion response.
func (r CppResponse) Marshal() []byte {
	var b []byte
	for _, c := range r.Completions {
		b = appendEmbedded(b, fieldCppRespCompletions, c.marshal())
	}
	b = append(b, r.unknown...)
	return b
}
