package gatt

import "github.com/vitaminmoo/gattx/internal/codec"

// Assigned describes a well-known service, characteristic or descriptor.
type Assigned struct {
	Name string
	Type string

	// Format is the default wire format for well-known characteristics whose
	// value is a single field. HasFormat is false for composite values.
	Format    codec.Format
	HasFormat bool
}

// Lookup returns the assigned-numbers entry for a UUID.
func Lookup(u UUID) (Assigned, bool) {
	a, ok := known[u]
	return a, ok
}

// Name returns the well-known name of a UUID, or "".
func Name(u UUID) string {
	return known[u].Name
}

func svc(name, typ string) Assigned { return Assigned{Name: name, Type: "org.bluetooth.service." + typ} }

func desc(name, typ string) Assigned {
	return Assigned{Name: name, Type: "org.bluetooth.descriptor." + typ}
}

func char(name, typ string) Assigned {
	return Assigned{Name: name, Type: "org.bluetooth.characteristic." + typ}
}

func charOf(name, typ string, f codec.Format) Assigned {
	return Assigned{Name: name, Type: "org.bluetooth.characteristic." + typ, Format: f, HasFormat: true}
}

var known = map[UUID]Assigned{
	// Services
	"1800": svc("Generic Access", "generic_access"),
	"1801": svc("Generic Attribute", "generic_attribute"),
	"1802": svc("Immediate Alert", "immediate_alert"),
	"1803": svc("Link Loss", "link_loss"),
	"1804": svc("Tx Power", "tx_power"),
	"1805": svc("Current Time Service", "current_time"),
	"1806": svc("Reference Time Update Service", "reference_time_update"),
	"1807": svc("Next DST Change Service", "next_dst_change"),
	"1808": svc("Glucose", "glucose"),
	"1809": svc("Health Thermometer", "health_thermometer"),
	"180a": svc("Device Information", "device_information"),
	"180d": svc("Heart Rate", "heart_rate"),
	"180e": svc("Phone Alert Status Service", "phone_alert_status"),
	"180f": svc("Battery Service", "battery_service"),
	"1810": svc("Blood Pressure", "blood_pressure"),
	"1811": svc("Alert Notification Service", "alert_notification"),
	"1812": svc("Human Interface Device", "human_interface_device"),
	"1813": svc("Scan Parameters", "scan_parameters"),
	"1814": svc("Running Speed and Cadence", "running_speed_and_cadence"),
	"1815": svc("Automation IO", "automation_io"),
	"1816": svc("Cycling Speed and Cadence", "cycling_speed_and_cadence"),
	"1818": svc("Cycling Power", "cycling_power"),
	"1819": svc("Location and Navigation", "location_and_navigation"),
	"181a": svc("Environmental Sensing", "environmental_sensing"),
	"181b": svc("Body Composition", "body_composition"),
	"181c": svc("User Data", "user_data"),
	"181d": svc("Weight Scale", "weight_scale"),
	"181e": svc("Bond Management", "bond_management"),

	// Descriptors
	"2900": desc("Characteristic Extended Properties", "gatt.characteristic_extended_properties"),
	"2901": desc("Characteristic User Description", "gatt.characteristic_user_description"),
	"2902": desc("Client Characteristic Configuration", "gatt.client_characteristic_configuration"),
	"2903": desc("Server Characteristic Configuration", "gatt.server_characteristic_configuration"),
	"2904": desc("Characteristic Presentation Format", "gatt.characteristic_presentation_format"),
	"2905": desc("Characteristic Aggregate Format", "gatt.characteristic_aggregate_format"),
	"2906": desc("Valid Range", "valid_range"),
	"2907": desc("External Report Reference", "external_report_reference"),
	"2908": desc("Report Reference", "report_reference"),
	"290b": desc("Environmental Sensing Configuration", "es_configuration"),
	"290c": desc("Environmental Sensing Measurement", "es_measurement"),
	"290d": desc("Environmental Sensing Trigger Setting", "es_trigger_setting"),
	"290e": desc("Time Trigger Setting", "time_trigger_setting"),

	// Characteristics
	"2a00": charOf("Device Name", "gap.device_name", codec.UTF8S),
	"2a01": charOf("Appearance", "gap.appearance", codec.Uint16),
	"2a02": charOf("Peripheral Privacy Flag", "gap.peripheral_privacy_flag", codec.Boolean),
	"2a03": char("Reconnection Address", "gap.reconnection_address"),
	"2a04": char("Peripheral Preferred Connection Parameters", "gap.peripheral_preferred_connection_parameters"),
	"2a05": char("Service Changed", "gatt.service_changed"),
	"2a06": charOf("Alert Level", "alert_level", codec.Uint8),
	"2a07": charOf("Tx Power Level", "tx_power_level", codec.Sint8),
	"2a08": char("Date Time", "date_time"),
	"2a09": charOf("Day of Week", "day_of_week", codec.Uint8),
	"2a0a": char("Day Date Time", "day_date_time"),
	"2a0c": char("Exact Time 256", "exact_time_256"),
	"2a0d": charOf("DST Offset", "dst_offset", codec.Uint8),
	"2a0e": charOf("Time Zone", "time_zone", codec.Sint8),
	"2a0f": char("Local Time Information", "local_time_information"),
	"2a11": char("Time with DST", "time_with_dst"),
	"2a12": char("Time Accuracy", "time_accuracy"),
	"2a13": charOf("Time Source", "time_source", codec.Uint8),
	"2a14": char("Reference Time Information", "reference_time_information"),
	"2a16": char("Time Update Control Point", "time_update_control_point"),
	"2a17": char("Time Update State", "time_update_state"),
	"2a18": char("Glucose Measurement", "glucose_measurement"),
	"2a19": charOf("Battery Level", "battery_level", codec.Uint8),
	"2a1c": char("Temperature Measurement", "temperature_measurement"),
	"2a1d": charOf("Temperature Type", "temperature_type", codec.Uint8),
	"2a1e": char("Intermediate Temperature", "intermediate_temperature"),
	"2a21": charOf("Measurement Interval", "measurement_interval", codec.Uint16),
	"2a22": char("Boot Keyboard Input Report", "boot_keyboard_input_report"),
	"2a23": charOf("System ID", "system_id", codec.Hex),
	"2a24": charOf("Model Number String", "model_number_string", codec.UTF8S),
	"2a25": charOf("Serial Number String", "serial_number_string", codec.UTF8S),
	"2a26": charOf("Firmware Revision String", "firmware_revision_string", codec.UTF8S),
	"2a27": charOf("Hardware Revision String", "hardware_revision_string", codec.UTF8S),
	"2a28": charOf("Software Revision String", "software_revision_string", codec.UTF8S),
	"2a29": charOf("Manufacturer Name String", "manufacturer_name_string", codec.UTF8S),
	"2a2a": charOf("IEEE 11073-20601 Regulatory Certification Data List", "ieee_11073-20601_regulatory_certification_data_list", codec.RegCertDataList),
	"2a2b": char("Current Time", "current_time"),
	"2a31": charOf("Scan Refresh", "scan_refresh", codec.Uint8),
	"2a32": char("Boot Keyboard Output Report", "boot_keyboard_output_report"),
	"2a33": char("Boot Mouse Input Report", "boot_mouse_input_report"),
	"2a34": char("Glucose Measurement Context", "glucose_measurement_context"),
	"2a35": char("Blood Pressure Measurement", "blood_pressure_measurement"),
	"2a36": char("Intermediate Cuff Pressure", "intermediate_cuff_pressure"),
	"2a37": char("Heart Rate Measurement", "heart_rate_measurement"),
	"2a38": charOf("Body Sensor Location", "body_sensor_location", codec.Uint8),
	"2a39": charOf("Heart Rate Control Point", "heart_rate_control_point", codec.Uint8),
	"2a3f": char("Alert Status", "alert_status"),
	"2a40": charOf("Ringer Control Point", "ringer_control_point", codec.Uint8),
	"2a41": charOf("Ringer Setting", "ringer_setting", codec.Uint8),
	"2a42": char("Alert Category ID Bit Mask", "alert_category_id_bit_mask"),
	"2a43": charOf("Alert Category ID", "alert_category_id", codec.Uint8),
	"2a44": char("Alert Notification Control Point", "alert_notification_control_point"),
	"2a45": char("Unread Alert Status", "unread_alert_status"),
	"2a46": char("New Alert", "new_alert"),
	"2a47": char("Supported New Alert Category", "supported_new_alert_category"),
	"2a48": char("Supported Unread Alert Category", "supported_unread_alert_category"),
	"2a49": char("Blood Pressure Feature", "blood_pressure_feature"),
	"2a4a": char("HID Information", "hid_information"),
	"2a4b": char("Report Map", "report_map"),
	"2a4c": charOf("HID Control Point", "hid_control_point", codec.Uint8),
	"2a4d": char("Report", "report"),
	"2a4e": charOf("Protocol Mode", "protocol_mode", codec.Uint8),
	"2a4f": char("Scan Interval Window", "scan_interval_window"),
	"2a50": char("PnP ID", "pnp_id"),
	"2a51": char("Glucose Feature", "glucose_feature"),
	"2a52": char("Record Access Control Point", "record_access_control_point"),
	"2a53": char("RSC Measurement", "rsc_measurement"),
	"2a54": char("RSC Feature", "rsc_feature"),
	"2a55": char("SC Control Point", "sc_control_point"),
	"2a5b": char("CSC Measurement", "csc_measurement"),
	"2a5c": char("CSC Feature", "csc_feature"),
	"2a5d": charOf("Sensor Location", "sensor_location", codec.Uint8),
	"2a63": char("Cycling Power Measurement", "cycling_power_measurement"),
	"2a6c": charOf("Elevation", "elevation", codec.Sint24),
	"2a6d": charOf("Pressure", "pressure", codec.Uint32),
	"2a6e": charOf("Temperature", "temperature", codec.Sint16),
	"2a6f": charOf("Humidity", "humidity", codec.Uint16),
}
