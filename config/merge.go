package config

// mergeInto merges override over base, treating a nil base as empty.
func mergeInto(base, override *Config) *Config {
	if base == nil {
		return override
	}
	return mergeConfigs(base, override)
}

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.Tool != "" {
		result.Tool = override.Tool
	}
	if override.StrictExit {
		result.StrictExit = override.StrictExit
	}
	if override.EnvFile != "" {
		result.EnvFile = override.EnvFile
	}

	result.Watch = mergeWatch(result.Watch, override.Watch)

	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(result.Extensions)+len(override.Extensions))
		for k, v := range result.Extensions {
			merged[k] = v
		}
		for key, value := range override.Extensions {
			// Same extension in both layers: shallow-merge the maps
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					mergedMap := make(map[string]interface{}, len(baseMap)+len(overrideMap))
					for k, v := range baseMap {
						mergedMap[k] = v
					}
					for k, v := range overrideMap {
						mergedMap[k] = v
					}
					merged[key] = mergedMap
					continue
				}
			}
			merged[key] = value
		}
		result.Extensions = merged
	}

	result.Sources = append(append([]string(nil), base.Sources...), override.Sources...)

	return &result
}

func mergeWatch(base, override WatchConfig) WatchConfig {
	result := base

	if override.DebounceMs != 0 {
		result.DebounceMs = override.DebounceMs
	}
	if len(override.Ignore) > 0 {
		result.Ignore = override.Ignore
	}

	return result
}
