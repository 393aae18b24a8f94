package server

import (
	"github.com/relaygw/relay/pkg/dynamickey"
	"github.com/relaygw/relay/pkg/tokenpool"
)

// tokenDTO is the wire JSON shape of a TokenRecord on the admin API,
// mirroring the field names §3's data model names.
type tokenDTO struct {
	Alias          string `json:"alias"`
	PrimaryToken   string `json:"primary_token,omitempty"`
	SecondaryToken string `json:"secondary_token,omitempty"`
	ChecksumFirst  string `json:"checksum_first,omitempty"`
	ChecksumSecond string `json:"checksum_second,omitempty"`
	ClientKey      string `json:"client_key,omitempty"`
	ConfigVersion  string `json:"config_version,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	ProxyName      string `json:"proxy_name,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
	GCPPHost       string `json:"gcpp_host,omitempty"`
	User           string `json:"user,omitempty"`
	Stripe         string `json:"stripe,omitempty"`
	Usage          string `json:"usage,omitempty"`
	Sessions       string `json:"sessions,omitempty"`
	Enabled        bool   `json:"enabled"`
	Failing        bool   `json:"failing"`
	InUse          bool   `json:"in_use"`
}

func gcppHostToString(h tokenpool.GCPPHost) string {
	switch h {
	case tokenpool.GCPPHostAsia:
		return "asia"
	case tokenpool.GCPPHostEU:
		return "eu"
	case tokenpool.GCPPHostUS:
		return "us"
	default:
		return ""
	}
}

func gcppHostFromString(s string) tokenpool.GCPPHost {
	switch s {
	case "asia":
		return tokenpool.GCPPHostAsia
	case "eu":
		return tokenpool.GCPPHostEU
	case "us":
		return tokenpool.GCPPHostUS
	default:
		return tokenpool.GCPPHostUnset
	}
}

func recordToDTO(alias string, rec tokenpool.TokenRecord) tokenDTO {
	return tokenDTO{
		Alias:          alias,
		PrimaryToken:   rec.PrimaryToken,
		SecondaryToken: rec.SecondaryToken,
		ChecksumFirst:  rec.ChecksumFirst,
		ChecksumSecond: rec.ChecksumSecond,
		ClientKey:      rec.ClientKey,
		ConfigVersion:  rec.ConfigVersion,
		SessionID:      rec.SessionID,
		ProxyName:      rec.ProxyName,
		Timezone:       rec.Timezone,
		GCPPHost:       gcppHostToString(rec.GCPPHost),
		User:           rec.User,
		Stripe:         rec.Stripe,
		Usage:          rec.Usage,
		Sessions:       rec.Sessions,
		Enabled:        rec.Status.Enabled,
		Failing:        rec.Status.Failing,
		InUse:          rec.InUse,
	}
}

func dtoToRecord(d tokenDTO) tokenpool.TokenRecord {
	return tokenpool.TokenRecord{
		Alias:          d.Alias,
		PrimaryToken:   d.PrimaryToken,
		SecondaryToken: d.SecondaryToken,
		ChecksumFirst:  d.ChecksumFirst,
		ChecksumSecond: d.ChecksumSecond,
		ClientKey:      d.ClientKey,
		ConfigVersion:  d.ConfigVersion,
		SessionID:      d.SessionID,
		ProxyName:      d.ProxyName,
		Timezone:       d.Timezone,
		GCPPHost:       gcppHostFromString(d.GCPPHost),
		User:           d.User,
		Stripe:         d.Stripe,
		Usage:          d.Usage,
		Sessions:       d.Sessions,
		Status:         tokenpool.Status{Enabled: d.Enabled, Failing: d.Failing},
	}
}

// overridesDTO is the JSON shape of a dynamic key's override block, used by
// /build-key requests.
type overridesDTO struct {
	ProxyName            *string  `json:"proxy_name,omitempty"`
	Timezone             *string  `json:"timezone,omitempty"`
	GCPPHost             *string  `json:"gcpp_host,omitempty"`
	DisableVision        bool     `json:"disable_vision,omitempty"`
	EnableSlowPool       bool     `json:"enable_slow_pool,omitempty"`
	IncludeWebReferences bool     `json:"include_web_references,omitempty"`
	UsageCheckVariant    string   `json:"usage_check_variant,omitempty"`
	UsageCheckModels     []string `json:"usage_check_models,omitempty"`
}

func (d overridesDTO) toDynamicKey() dynamickey.Overrides {
	out := dynamickey.Overrides{
		ProxyName:            d.ProxyName,
		Timezone:             d.Timezone,
		DisableVision:        d.DisableVision,
		EnableSlowPool:       d.EnableSlowPool,
		IncludeWebReferences: d.IncludeWebReferences,
	}
	if d.GCPPHost != nil {
		host := gcppHostFromStringDynamic(*d.GCPPHost)
		out.GCPPHost = &host
	}
	switch d.UsageCheckVariant {
	case "disabled":
		out.UsageCheckModels = &dynamickey.UsageCheckModelsOverride{Variant: dynamickey.UsageCheckVariantDisabled}
	case "all":
		out.UsageCheckModels = &dynamickey.UsageCheckModelsOverride{Variant: dynamickey.UsageCheckVariantAll}
	case "custom":
		out.UsageCheckModels = &dynamickey.UsageCheckModelsOverride{Variant: dynamickey.UsageCheckVariantCustom, Models: d.UsageCheckModels}
	}
	return out
}

func gcppHostFromStringDynamic(s string) dynamickey.GCPPHost {
	switch s {
	case "eu":
		return dynamickey.GCPPHostEU
	case "us":
		return dynamickey.GCPPHostUS
	default:
		return dynamickey.GCPPHostAsia
	}
}
