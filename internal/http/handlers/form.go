package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/patient"
	"github.com/yungbote/heartcheck/internal/platform/logger"
)

//go:embed templates/form.html
var templateFS embed.FS

var formTemplate = template.Must(template.New("form.html").Funcs(template.FuncMap{
	"percent": func(f float64) string { return fmt.Sprintf("%.2f%%", f*100) },
}).ParseFS(templateFS, "templates/form.html"))

const messageFormFailure = "The model could not produce a prediction. Please try again later."

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	Name    string
	Label   string
	Help    string
	Value   string
	Error   string
	Options []optionView
}

type formView struct {
	Columns    [2][]fieldView
	Messages   []string
	Result     string
	HasDisease bool
	Model      *model.Info
}

type formField struct {
	name    string
	label   string
	help    string
	value   func(patient.RawFields) string
	options []patient.Option
}

// Two columns, in the order the form presents them.
var formLayout = [2][]formField{
	{
		{patient.FieldAge, "Age (in years)", "", func(r patient.RawFields) string { return r.Age }, nil},
		{patient.FieldSex, "Sex", "", func(r patient.RawFields) string { return r.Sex }, patient.SexOptions},
		{patient.FieldChestPainType, "Chest Pain Type", "TA: Typical Angina, ATA: Atypical Angina, NAP: Non-Anginal Pain, ASY: Asymptomatic", func(r patient.RawFields) string { return r.ChestPainType }, patient.ChestPainTypeOptions},
		{patient.FieldRestingBP, "Resting Blood Pressure [mm Hg]", "", func(r patient.RawFields) string { return r.RestingBP }, nil},
		{patient.FieldCholesterol, "Serum Cholesterol [mg/dL]", "", func(r patient.RawFields) string { return r.Cholesterol }, nil},
		{patient.FieldFastingBS, "Fasting Blood Sugar [mg/dL]", "", func(r patient.RawFields) string { return r.FastingBS }, nil},
	},
	{
		{patient.FieldRestingECG, "Resting ECG Results", "ST: ST-T wave abnormality, LVH: Left Ventricular Hypertrophy", func(r patient.RawFields) string { return r.RestingECG }, patient.RestingECGOptions},
		{patient.FieldMaxHR, "Maximum Heart Rate Achieved", "", func(r patient.RawFields) string { return r.MaxHR }, nil},
		{patient.FieldExerciseAngina, "Exercise-induced Angina", "", func(r patient.RawFields) string { return r.ExerciseAngina }, patient.ExerciseAnginaOptions},
		{patient.FieldOldpeak, "ST Depression (Oldpeak)", "", func(r patient.RawFields) string { return r.Oldpeak }, nil},
		{patient.FieldSTSlope, "ST Slope", "", func(r patient.RawFields) string { return r.STSlope }, patient.STSlopeOptions},
	},
}

type FormHandler struct {
	log *logger.Logger
	svc Predictor
}

func NewFormHandler(log *logger.Logger, svc Predictor) *FormHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &FormHandler{log: log, svc: svc}
}

// GET /
func (h *FormHandler) Show(c *gin.Context) {
	h.render(c, http.StatusOK, h.view(c, patient.RawFields{}, nil))
}

// POST /
func (h *FormHandler) Submit(c *gin.Context) {
	var raw patient.RawFields
	if err := c.ShouldBindWith(&raw, binding.Form); err != nil {
		v := h.view(c, raw, nil)
		v.Messages = []string{"The submitted form could not be read."}
		h.render(c, http.StatusBadRequest, v)
		return
	}

	res, err := h.svc.Predict(c.Request.Context(), raw)
	switch {
	case err == nil:
		v := h.view(c, raw, nil)
		v.Result = res.Message
		v.HasDisease = res.HasHeartDisease
		h.render(c, http.StatusOK, v)
	case patient.IsValidationError(err):
		v := h.view(c, raw, patient.FieldErrors(err))
		v.Messages = patient.Messages(err)
		h.render(c, http.StatusUnprocessableEntity, v)
	default:
		_ = c.Error(err)
		h.log.Error("Form prediction failed", "error", err)
		v := h.view(c, raw, nil)
		v.Messages = []string{messageFormFailure}
		h.render(c, http.StatusInternalServerError, v)
	}
}

func (h *FormHandler) view(c *gin.Context, raw patient.RawFields, errs map[string]string) formView {
	var v formView
	for col, fields := range formLayout {
		for _, ff := range fields {
			f := fieldView{
				Name:  ff.name,
				Label: ff.label,
				Help:  ff.help,
				Value: ff.value(raw),
				Error: errs[ff.name],
			}
			for _, o := range ff.options {
				f.Options = append(f.Options, optionView{Value: o.Value, Label: o.Label, Selected: o.Value == f.Value})
			}
			v.Columns[col] = append(v.Columns[col], f)
		}
	}
	if info, err := h.svc.Model(c.Request.Context()); err == nil {
		v.Model = &info
	}
	return v
}

func (h *FormHandler) render(c *gin.Context, status int, v formView) {
	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, v); err != nil {
		h.log.Error("Render form failed", "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
