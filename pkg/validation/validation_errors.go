package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to Thai labels shown to applicants
var FieldLabels = map[string]string{
	"Prefix":          "คำนำหน้า",
	"FirstName":       "ชื่อ",
	"LastName":        "นามสกุล",
	"Email":           "อีเมล",
	"Phone":           "เบอร์โทรศัพท์",
	"IDCardNumber":    "เลขบัตรประชาชน",
	"AppliedPosition": "ตำแหน่งที่สมัคร",
	"Department":      "หน่วยงาน",
	"Gender":          "เพศ",
	"MaritalStatus":   "สถานภาพสมรส",
	"Status":          "สถานะ",
	"Reason":          "เหตุผล",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: จำเป็นต้องกรอก", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: ต้องมีอย่างน้อย %s ตัวอักษร", label, param)
		}
		return fmt.Sprintf("%s: ต้องไม่น้อยกว่า %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: ต้องไม่เกิน %s ตัวอักษร", label, param)
		}
		return fmt.Sprintf("%s: ต้องไม่เกิน %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: ต้องเป็นหนึ่งใน: %s", label, formatOneOfOptions(param))
	case "email":
		return fmt.Sprintf("%s: รูปแบบอีเมลไม่ถูกต้อง", label)
	case "valid_name":
		return fmt.Sprintf("%s: ใช้ได้เฉพาะตัวอักษร ช่องว่าง และเครื่องหมาย . ' - /", label)
	case "valid_phone":
		return fmt.Sprintf("%s: รูปแบบเบอร์โทรศัพท์ไม่ถูกต้อง", label)
	case "no_emoji":
		return fmt.Sprintf("%s: ห้ามมีอีโมจิหรือสัญลักษณ์พิเศษ", label)
	case "thai_id":
		return fmt.Sprintf("%s: เลขบัตรประชาชนไม่ถูกต้อง", label)
	default:
		return fmt.Sprintf("%s: ไม่ผ่านการตรวจสอบ (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}

func formatOneOfOptions(param string) string {
	options := strings.Split(param, " ")
	formatted := make([]string, len(options))
	for i, opt := range options {
		formatted[i] = formatEnumValue(opt)
	}
	return strings.Join(formatted, ", ")
}

// formatEnumValue formats enum values for display
func formatEnumValue(value string) string {
	enumLabels := map[string]string{
		"MALE":     "ชาย",
		"FEMALE":   "หญิง",
		"SINGLE":   "โสด",
		"MARRIED":  "สมรส",
		"DIVORCED": "หย่าร้าง",
		"WIDOWED":  "หม้าย",
		"pending":  "รอพิจารณา",
		"approved": "อนุมัติ",
		"rejected": "ไม่อนุมัติ",
		"hired":    "รับเข้าทำงาน",
	}
	if label, ok := enumLabels[value]; ok {
		return label
	}
	return value
}
