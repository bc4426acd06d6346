package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/01walid/goarabic"
	"github.com/go-pdf/fpdf"

	"wellpulse/internal/config"
	"wellpulse/internal/dataset"
	apierrors "wellpulse/internal/errors"
)

const (
	pdfMarginMM     = 15
	pdfImageWidthMM = 180
	// Charts render at a 10x6 inch aspect, so the embedded height follows.
	pdfImageHeightMM = pdfImageWidthMM * 0.6

	// latinFont is an fpdf core font, always available.
	latinFont = "Arial"
	// arabicFont is the registered name of the configured Unicode font.
	arabicFont = "arabic"

	importanceTableLimit = 10
)

// pdfWriter assembles the bilingual report document. Arabic lines are only
// emitted when a Unicode font with Arabic coverage was configured; every
// section carries an English rendition either way.
type pdfWriter struct {
	doc    *fpdf.Fpdf
	arabic bool
}

func newPDFWriter(fontPath string) (*pdfWriter, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(config.AppName+" production report", true)
	doc.SetMargins(pdfMarginMM, pdfMarginMM, pdfMarginMM)
	doc.SetAutoPageBreak(true, pdfMarginMM)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont(latinFont, "I", 8)
		doc.CellFormat(0, 8, fmt.Sprintf("%s %s - page %d/{nb}", config.AppName, config.AppVersion, doc.PageNo()),
			"", 0, "C", false, 0, "")
	})

	w := &pdfWriter{doc: doc}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err != nil {
			return nil, apierrors.NewConfigError(
				fmt.Sprintf("arabic font file %s is not readable", fontPath), err)
		}
		doc.AddUTF8Font(arabicFont, "", fontPath)
		if err := doc.Error(); err != nil {
			return nil, apierrors.NewConfigError(
				fmt.Sprintf("failed to load arabic font %s", filepath.Base(fontPath)), err)
		}
		w.arabic = true
	}

	doc.AddPage()
	return w, nil
}

// rtlCell writes one shaped Arabic line. The font reshapes glyphs to their
// contextual forms; the document's RTL mode handles the visual ordering, so
// the text must not be reversed here as well.
func (w *pdfWriter) rtlCell(height float64, size float64, text string) {
	w.doc.SetFont(arabicFont, "", size)
	w.doc.RTL()
	w.doc.CellFormat(0, height, goarabic.Reshape(text), "", 1, "R", false, 0, "")
	w.doc.LTR()
}

func (w *pdfWriter) title(arabic, english string) {
	if w.arabic {
		w.doc.SetFont(arabicFont, "", 18)
		w.doc.RTL()
		w.doc.CellFormat(0, 12, goarabic.Reshape(arabic), "", 1, "C", false, 0, "")
		w.doc.LTR()
	}
	w.doc.SetFont(latinFont, "B", 16)
	w.doc.CellFormat(0, 10, english, "", 1, "C", false, 0, "")
	w.doc.Ln(4)
}

func (w *pdfWriter) heading(arabic, english string) {
	if w.arabic {
		w.rtlCell(9, 14, arabic)
	}
	w.doc.SetFont(latinFont, "B", 13)
	w.doc.CellFormat(0, 8, english, "", 1, "L", false, 0, "")
	w.doc.Ln(1)
}

func (w *pdfWriter) paragraph(arabic, english string) {
	if w.arabic {
		w.doc.SetFont(arabicFont, "", 11)
		w.doc.RTL()
		w.doc.MultiCell(0, 6, goarabic.Reshape(arabic), "", "R", false)
		w.doc.LTR()
		w.doc.Ln(1)
	}
	w.doc.SetFont(latinFont, "", 11)
	w.doc.MultiCell(0, 6, english, "", "L", false)
	w.doc.Ln(2)
}

func (w *pdfWriter) keyValue(label, value string) {
	w.doc.SetFont(latinFont, "B", 11)
	w.doc.CellFormat(60, 6, label, "", 0, "L", false, 0, "")
	w.doc.SetFont(latinFont, "", 11)
	w.doc.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

// table renders a bordered table with a shaded header row. The first
// column is wider to fit the long canonical column names.
func (w *pdfWriter) table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	pageW, _ := w.doc.GetPageSize()
	usable := pageW - 2*pdfMarginMM
	firstW := usable * 0.25
	restW := 0.0
	if len(headers) > 1 {
		restW = (usable - firstW) / float64(len(headers)-1)
	} else {
		firstW = usable
	}

	width := func(col int) float64 {
		if col == 0 {
			return firstW
		}
		return restW
	}

	w.doc.SetFillColor(230, 230, 230)
	w.doc.SetFont(latinFont, "B", 9)
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		w.doc.CellFormat(width(i), 7, h, "1", ln, "C", true, 0, "")
	}

	w.doc.SetFont(latinFont, "", 9)
	for _, row := range rows {
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			ln := 0
			if i == len(row)-1 {
				ln = 1
			}
			w.doc.CellFormat(width(i), 6, cell, "1", ln, align, false, 0, "")
		}
	}
}

// chart embeds one rendered PNG with a caption, breaking to a new page
// when the image would not fit.
func (w *pdfWriter) chart(caption, path string) {
	_, pageH := w.doc.GetPageSize()
	_, _, _, bottom := w.doc.GetMargins()
	if w.doc.GetY()+pdfImageHeightMM+10 > pageH-bottom {
		w.doc.AddPage()
	}

	w.doc.SetFont(latinFont, "I", 10)
	w.doc.CellFormat(0, 6, caption, "", 1, "L", false, 0, "")
	w.doc.ImageOptions(path, pdfMarginMM, 0, pdfImageWidthMM, 0, true,
		fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	w.doc.Ln(4)
}

func (w *pdfWriter) lineBreak() {
	w.doc.Ln(4)
}

func (w *pdfWriter) save(path string) error {
	if err := w.doc.Error(); err != nil {
		return fmt.Errorf("pdf assembly: %w", err)
	}
	if err := w.doc.OutputFileAndClose(path); err != nil {
		return apierrors.NewStorageError(fmt.Sprintf("failed to write %s", filepath.Base(path)), err)
	}
	return nil
}

// renderPDF writes the production report document: dataset summary,
// descriptive statistics, model evaluation when available, and the
// rendered charts.
func (g *Generator) renderPDF(in Input, ci chartInputs, specs []chartSpec, chartPaths []string, path string) error {
	doc, err := newPDFWriter(g.paths.FontFile(g.cfg.ArabicFontFile))
	if err != nil {
		return err
	}

	doc.title("تقرير تحليل إنتاج النفط", "Oil Production Analysis Report")
	doc.paragraph(
		"هذا التقرير يحتوي على تحليل بيانات إنتاج النفط، بما في ذلك الرسوم البيانية التي توضح العلاقات بين المتغيرات المختلفة.",
		"This report covers the analysis of oil field production data, including "+
			"charts describing the relationships between the recorded variables.")

	doc.heading("البيانات", "Dataset")
	doc.keyValue("Rows", strconv.Itoa(in.Table.NRows()))
	doc.keyValue("Columns", strconv.Itoa(len(in.Table.Columns())))
	doc.keyValue("Fields", strconv.Itoa(len(ci.boxes)))
	if len(ci.days) > 0 {
		doc.keyValue("Date range",
			ci.days[0].Format(config.DateLayout)+" to "+ci.days[len(ci.days)-1].Format(config.DateLayout))
	}
	doc.keyValue("Generated", in.Stamp.Format(config.DateLayout))
	doc.lineBreak()

	if stats := dataset.Describe(in.Table); len(stats) > 0 {
		doc.heading("الإحصاءات الوصفية", "Descriptive statistics")
		rows := make([][]string, len(stats))
		for i, cs := range stats {
			rows[i] = []string{
				cs.Column,
				strconv.Itoa(cs.Count),
				fmtFloat(cs.Mean),
				fmtFloat(cs.Std),
				fmtFloat(cs.Min),
				fmtFloat(cs.Median),
				fmtFloat(cs.Max),
			}
		}
		doc.table([]string{"Column", "Count", "Mean", "Std", "Min", "Median", "Max"}, rows)
		doc.lineBreak()
	}

	if in.Summary != nil {
		doc.heading("تقييم النموذج", "Model evaluation")
		doc.keyValue("Target", in.Summary.Target)
		doc.keyValue("Train rows", strconv.Itoa(in.Summary.TrainRows))
		doc.keyValue("Test rows", strconv.Itoa(in.Summary.TestRows))
		doc.keyValue("Trees", strconv.Itoa(in.Summary.Trees))
		doc.keyValue("MSE", fmtFloat(in.Summary.Metrics.MSE))
		doc.keyValue("RMSE", fmtFloat(in.Summary.Metrics.RMSE))
		doc.keyValue("MAE", fmtFloat(in.Summary.Metrics.MAE))
		doc.keyValue("R2", strconv.FormatFloat(in.Summary.Metrics.R2, 'f', 4, 64))
		doc.lineBreak()

		if len(in.Summary.Importances) > 0 {
			doc.heading("أهمية المتغيرات", "Feature importance")
			limit := len(in.Summary.Importances)
			if limit > importanceTableLimit {
				limit = importanceTableLimit
			}
			rows := make([][]string, limit)
			for i, imp := range in.Summary.Importances[:limit] {
				rows[i] = []string{imp.Feature, strconv.FormatFloat(imp.Importance, 'f', 4, 64)}
			}
			doc.table([]string{"Feature", "Importance"}, rows)
			doc.lineBreak()
		}
	}

	if len(chartPaths) > 0 {
		doc.heading("الرسوم البيانية", "Charts")
		for i, chartPath := range chartPaths {
			caption := strings.ReplaceAll(specs[i].name, "_", " ")
			doc.chart(caption, chartPath)
		}
	}

	return doc.save(path)
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
