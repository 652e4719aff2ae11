package outreach

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/shaiso/Prospector/internal/domain"
)

// messageFuncs — функции, доступные в шаблонах сообщений.
var messageFuncs = template.FuncMap{
	// lower — приводит к нижнему регистру
	"lower": strings.ToLower,

	// upper — приводит к верхнему регистру
	"upper": strings.ToUpper,

	// trim — удаляет пробелы по краям
	"trim": strings.TrimSpace,

	// default — возвращает значение по умолчанию, если аргумент пустой
	"default": func(def, val string) string {
		if val == "" {
			return def
		}
		return val
	},
}

// RenderTemplate рендерит шаблон сообщения по записи получателя.
// Поля записи доступны по именам: {{.username}}, {{.full_name}} и так
// далее; отсутствующее поле рендерится пустой строкой.
func RenderTemplate(tmpl string, recipient domain.Record) (string, error) {
	// Строка без шаблонных выражений используется как есть.
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("message").Funcs(messageFuncs).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	data := make(map[string]string, len(recipient))
	for key, val := range recipient {
		if val == nil {
			continue
		}
		data[key] = fmt.Sprint(val)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}
