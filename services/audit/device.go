package audit

import "github.com/mileusna/useragent"

type DeviceInfo struct {
	Browser    string
	OS         string
	DeviceType string
	Device     string
}

func ParseDevice(userAgentString string) DeviceInfo {
	if userAgentString == "" {
		return DeviceInfo{
			Browser:    "Unknown Browser",
			OS:         "Unknown OS",
			DeviceType: "Unknown",
			Device:     "Unknown Device",
		}
	}

	ua := useragent.Parse(userAgentString)

	deviceType := "Desktop"
	if ua.Mobile {
		deviceType = "Mobile"
	} else if ua.Tablet {
		deviceType = "Tablet"
	} else if ua.Bot {
		deviceType = "Bot"
	}

	browser := "Unknown Browser"
	if ua.Name != "" {
		browser = withVersion(ua.Name, ua.Version)
	}

	os := "Unknown OS"
	if ua.OS != "" {
		os = withVersion(ua.OS, ua.OSVersion)
	}

	device := "Desktop Computer"
	if ua.Device != "" {
		device = ua.Device
	} else if ua.Mobile {
		device = "Mobile Device"
	} else if ua.Tablet {
		device = "Tablet"
	}

	return DeviceInfo{
		Browser:    browser,
		OS:         os,
		DeviceType: deviceType,
		Device:     device,
	}
}

func withVersion(name, version string) string {
	if version == "" {
		return name
	}
	return name + " " + version
}
