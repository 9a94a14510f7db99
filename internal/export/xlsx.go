// Package export converts catalog and order data to and from spreadsheets.
package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

// ContentType is the MIME type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const timeLayout = "2006-01-02 15:04:05"

var orderHeaders = []string{
	"ID", "CreatedAt", "Status", "Customer", "Email", "Phone",
	"Shipping", "Address", "Items", "Subtotal", "Discount", "ShippingFee",
	"Total", "Coupon",
}

// WriteOrders writes orders as a single sheet workbook to w.
func WriteOrders(w io.Writer, orders []models.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return errors.Wrap(err, "add sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range orderHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetString(o.ID)
		row.AddCell().SetString(o.CreatedAt.UTC().Format(timeLayout))
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(o.CustomerName)
		row.AddCell().SetString(o.CustomerEmail)
		row.AddCell().SetString(o.CustomerPhone)
		row.AddCell().SetString(string(o.ShippingAddress.Method))
		row.AddCell().SetString(formatAddress(o.ShippingAddress))
		row.AddCell().SetString(formatItems(o.Items))
		row.AddCell().SetFloat(o.Subtotal.InexactFloat64())
		row.AddCell().SetFloat(o.DiscountAmount.InexactFloat64())
		row.AddCell().SetFloat(o.ShippingFee.InexactFloat64())
		row.AddCell().SetFloat(o.TotalAmount.InexactFloat64())
		row.AddCell().SetString(o.CouponCode)
	}

	if err := file.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func formatAddress(a models.ShippingAddress) string {
	if a.Method == models.ShippingPickupPoint {
		return "Locker " + a.LockerID
	}
	parts := []string{}
	for _, p := range []string{a.Street, a.PostalCode + " " + a.City, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func formatItems(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Name+" x"+strconv.Itoa(it.Quantity)+" @ "+it.Price.StringFixed(2))
	}
	return strings.Join(parts, "; ")
}

var productHeaders = []string{
	"ID", "Name", "Description", "Price", "Size", "Brand", "Condition",
	"CategoryID", "DropID", "Images", "Sold",
}

// WriteProducts writes the catalog in the layout ReadProducts accepts.
func WriteProducts(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return errors.Wrap(err, "add sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range productHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.String())
		row.AddCell().SetString(p.Size)
		row.AddCell().SetString(p.Brand)
		row.AddCell().SetString(p.Condition)
		row.AddCell().SetString(deref(p.CategoryID))
		row.AddCell().SetString(deref(p.DropID))
		row.AddCell().SetString(strings.Join(p.Images, ","))
		row.AddCell().SetString(strconv.FormatBool(p.IsSold))
	}

	if err := file.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RowError reports a spreadsheet row that could not be imported.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ReadProducts parses the first sheet of a workbook written by
// WriteProducts. Rows that cannot be parsed are skipped and reported.
func ReadProducts(data []byte) ([]models.Product, []RowError, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open workbook")
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) < 1 {
		return nil, nil, errors.New("workbook has no header row")
	}

	var products []models.Product
	var rowErrs []RowError
	for i, row := range file.Sheets[0].Rows[1:] {
		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].Value)
			}
			return ""
		}

		rowNum := i + 2
		if get(0) == "" && get(1) == "" {
			continue
		}
		if get(1) == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "name is required"})
			continue
		}
		price, err := decimal.NewFromString(get(3))
		if err != nil || price.IsNegative() {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "invalid price"})
			continue
		}

		p := models.Product{
			ID:          get(0),
			Name:        get(1),
			Description: get(2),
			Price:       price,
			Size:        get(4),
			Brand:       get(5),
			Condition:   get(6),
			Images:      []string{},
		}
		if v := get(7); v != "" {
			p.CategoryID = &v
		}
		if v := get(8); v != "" {
			p.DropID = &v
		}
		if v := get(9); v != "" {
			p.Images = strings.Split(v, ",")
		}
		p.IsSold, _ = strconv.ParseBool(get(10))
		products = append(products, p)
	}
	return products, rowErrs, nil
}
