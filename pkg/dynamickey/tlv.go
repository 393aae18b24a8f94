package dynamickey

import "strings"

const (
	tlvProxyName            byte = 0x01
	tlvTimezone             byte = 0x02
	tlvGCPPHost             byte = 0x03
	tlvDisableVision        byte = 0x10
	tlvEnableSlowPool       byte = 0x11
	tlvIncludeWebReferences byte = 0x12
	tlvUsageCheckModels     byte = 0x20
)

// usageModelsSeparator joins the custom model-name list inside the
// usage_check_models TLV value. It's our own detail (the vendor's wire
// schema doesn't define this TLV's internal list format beyond "1 byte
// variant + optional UTF-8 list"); a comma is a safe separator since model
// names are short identifiers that never contain one.
const usageModelsSeparator = ","

func appendTLV(b []byte, code byte, value []byte) ([]byte, error) {
	if len(value) > 255 {
		return nil, &InvalidKeyError{Format: "payload", Reason: "override value exceeds 255 bytes"}
	}
	b = append(b, code, byte(len(value)))
	b = append(b, value...)
	return b, nil
}

// encodeOverrides serializes o as the overrides block (including its
// version byte), or returns nil if o is empty.
func encodeOverrides(o Overrides) ([]byte, error) {
	if o.IsEmpty() {
		return nil, nil
	}

	b := []byte{overridesVersion}
	var err error

	if o.ProxyName != nil {
		if b, err = appendTLV(b, tlvProxyName, []byte(*o.ProxyName)); err != nil {
			return nil, err
		}
	}
	if o.Timezone != nil {
		if b, err = appendTLV(b, tlvTimezone, []byte(*o.Timezone)); err != nil {
			return nil, err
		}
	}
	if o.GCPPHost != nil {
		if b, err = appendTLV(b, tlvGCPPHost, []byte{byte(*o.GCPPHost)}); err != nil {
			return nil, err
		}
	}
	if o.DisableVision {
		if b, err = appendTLV(b, tlvDisableVision, nil); err != nil {
			return nil, err
		}
	}
	if o.EnableSlowPool {
		if b, err = appendTLV(b, tlvEnableSlowPool, nil); err != nil {
			return nil, err
		}
	}
	if o.IncludeWebReferences {
		if b, err = appendTLV(b, tlvIncludeWebReferences, nil); err != nil {
			return nil, err
		}
	}
	if o.UsageCheckModels != nil {
		value := []byte{byte(o.UsageCheckModels.Variant)}
		if o.UsageCheckModels.Variant == UsageCheckVariantCustom {
			value = append(value, []byte(strings.Join(o.UsageCheckModels.Models, usageModelsSeparator))...)
		}
		if b, err = appendTLV(b, tlvUsageCheckModels, value); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// decodeOverrides parses an overrides block (with its leading version
// byte). Unknown TLV codes are skipped, satisfying forward compatibility.
func decodeOverrides(b []byte) (Overrides, error) {
	var o Overrides
	if len(b) == 0 {
		return o, nil
	}
	if b[0] != overridesVersion {
		return o, &InvalidKeyError{Format: "payload", Reason: "unsupported overrides version"}
	}
	b = b[1:]

	for len(b) > 0 {
		if len(b) < 2 {
			return o, &InvalidKeyError{Format: "payload", Reason: "truncated TLV header"}
		}
		code := b[0]
		length := int(b[1])
		b = b[2:]
		if len(b) < length {
			return o, &InvalidKeyError{Format: "payload", Reason: "truncated TLV value"}
		}
		value := b[:length]
		b = b[length:]

		switch code {
		case tlvProxyName:
			s := string(value)
			o.ProxyName = &s
		case tlvTimezone:
			s := string(value)
			o.Timezone = &s
		case tlvGCPPHost:
			if length != 1 {
				return o, &InvalidKeyError{Format: "payload", Reason: "gcpp_host must be 1 byte"}
			}
			host := GCPPHost(value[0])
			o.GCPPHost = &host
		case tlvDisableVision:
			o.DisableVision = true
		case tlvEnableSlowPool:
			o.EnableSlowPool = true
		case tlvIncludeWebReferences:
			o.IncludeWebReferences = true
		case tlvUsageCheckModels:
			if length == 0 {
				return o, &InvalidKeyError{Format: "payload", Reason: "usage_check_models missing variant byte"}
			}
			override := &UsageCheckModelsOverride{Variant: UsageCheckVariant(value[0])}
			if override.Variant == UsageCheckVariantCustom && length > 1 {
				override.Models = strings.Split(string(value[1:]), usageModelsSeparator)
			}
			o.UsageCheckModels = override
		default:
			// unknown TLV code: ignored for forward compatibility
		}
	}

	return o, nil
}
