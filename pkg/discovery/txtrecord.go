package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeThingTXT creates the TXT records for a Thing advertisement.
func EncodeThingTXT(info *ThingInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyTDPath] = info.TDPath
	if txt[TXTKeyTDPath] == "" {
		txt[TXTKeyTDPath] = DefaultTDPath
	}
	txt[TXTKeyType] = info.Type
	if txt[TXTKeyType] == "" {
		txt[TXTKeyType] = TypeThing
	}

	if info.Scheme != "" {
		txt[TXTKeyScheme] = info.Scheme
	}

	return txt
}

// DecodeThingTXT parses the TXT records of a Thing advertisement.
func DecodeThingTXT(txt TXTRecordMap) (*ThingInfo, error) {
	info := &ThingInfo{}

	var ok bool
	info.TDPath, ok = txt[TXTKeyTDPath]
	if !ok || info.TDPath == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyTDPath)
	}
	if !strings.HasPrefix(info.TDPath, "/") {
		return nil, fmt.Errorf("%w: td path %q is not absolute", ErrInvalidTXTRecord, info.TDPath)
	}

	info.Type, ok = txt[TXTKeyType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyType)
	}
	if info.Type != TypeThing && info.Type != TypeDirectory {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTXTRecord, info.Type)
	}

	info.Scheme = txt[TXTKeyScheme]
	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a sorted slice of
// "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrMissingRequired)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}

// InstanceName derives an instance name from a Thing title, cutting it to
// the DNS label limit without splitting a UTF-8 sequence.
func InstanceName(title string) string {
	title = strings.TrimSpace(title)
	if len(title) <= MaxInstanceNameLen {
		return title
	}
	cut := MaxInstanceNameLen
	for cut > 0 && title[cut]&0xC0 == 0x80 {
		cut--
	}
	return title[:cut]
}
