// Package normalize 将后端返回的异构内容记录转换为 content.Renderable。
// 同时兼容 WordPress v2（title.rendered、acf、_embedded）与早期的扁平格式。
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/cardstudio/content"
)

var (
	// ErrMissingID 表示记录缺少标识。
	ErrMissingID = errors.New("record has no id")
	// ErrMissingTitle 表示记录缺少标题。
	ErrMissingTitle = errors.New("record has no title")
)

// FieldError 指出导致规范化失败的字段。
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("normalize %s: %v", e.Field, e.Err) }
func (e *FieldError) Unwrap() error { return e.Err }

// 默认分类文本。
const (
	DefaultGuideCategory   = "Beslenme Rehberi"
	DefaultArticleCategory = "Blog"
)

// Record 是解码后的原始后端记录。
type Record map[string]any

// DecodeRecord 解码单条 JSON 记录，数字保留为 json.Number。
func DecodeRecord(data []byte) (Record, error) {
	return decode[Record](bytes.NewReader(data))
}

// DecodeRecords 解码 JSON 数组。
func DecodeRecords(r io.Reader) ([]Record, error) {
	return decode[[]Record](r)
}

func decode[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

// Normalizer 负责记录转换；Log 为空时不输出诊断。
type Normalizer struct {
	Log logrus.FieldLogger
}

// New 创建使用指定日志的 Normalizer。
func New(log logrus.FieldLogger) *Normalizer {
	return &Normalizer{Log: log}
}

// Normalize 使用不输出日志的 Normalizer 转换记录。
func Normalize(raw Record) (content.Renderable, error) {
	return (&Normalizer{}).Normalize(raw)
}

// Normalize 转换一条记录。只有缺少 id 或标题时才返回错误，
// 其余字段缺失或格式异常时使用默认值并记录诊断。
func (n *Normalizer) Normalize(raw Record) (content.Renderable, error) {
	id := strings.TrimSpace(stringOf(raw["id"]))
	if id == "" {
		return content.Renderable{}, &FieldError{Field: "id", Err: ErrMissingID}
	}
	title := plainText(stringOf(raw["title"]))
	if title == "" {
		return content.Renderable{}, &FieldError{Field: "title", Err: ErrMissingTitle}
	}
	log := n.logger().WithField("id", id)

	typeTag := firstString(raw, "type", "post_type", "contentKind", "templateType")
	kind, known := content.ResolveKind(typeTag)
	if !known {
		log.WithField("type", typeTag).Debug("unrecognized content type, using article")
	}

	acf := mapOf(raw["acf"])
	field := func(key string) any {
		if v, ok := acf[key]; ok && v != nil && v != false {
			return v
		}
		return raw[key]
	}
	text := func(key string) string { return plainText(stringOf(field(key))) }

	embedded := mapOf(raw["_embedded"])
	terms := collectTerms(embedded["wp:term"])
	terms = append(terms, collectTerms(raw["terms"])...)

	out := content.Renderable{
		ID:         id,
		Kind:       kind,
		Title:      title,
		Visibility: content.Visibility{},
		Watermark:  content.DefaultWatermark(),
	}

	summarySrc := stringOf(raw["excerpt"])
	if strings.TrimSpace(summarySrc) == "" {
		summarySrc = stringOf(raw["content"])
	}
	out.Summary = truncate(plainText(summarySrc), content.SummaryLimit)

	out.BackgroundRef = featuredImage(raw, embedded)

	ageTerm, hasAge := findTerm(terms, ageGroupTaxonomies)
	mealTerm, _ := findTerm(terms, mealTypeTaxonomies)
	catTerm, _ := findTerm(terms, categoryTaxonomies)
	seasonTerm, _ := findTerm(terms, seasonTaxonomies)

	out.AgeGroup = ageTerm.Name
	if out.AgeGroup == "" {
		out.AgeGroup = text("age_group")
	}
	switch {
	case hasAge && termColor(ageTerm) != "":
		out.AgeGroupColor = termColor(ageTerm)
	case out.AgeGroup != "":
		out.AgeGroupColor = content.AgeGroupColor(out.AgeGroup)
	default:
		out.AgeGroupColor = content.DefaultAgeGroupColor
	}
	out.MealType = mealTerm.Name
	if out.MealType == "" {
		out.MealType = text("meal_type")
	}
	out.Season = seasonTerm.Name
	if out.Season == "" {
		out.Season = text("season")
	}

	switch kind {
	case content.KindRecipe:
		out.Category = out.AgeGroup
	case content.KindIngredientGuide:
		out.Category = out.Season
		if out.Category == "" {
			out.Category = DefaultGuideCategory
		}
	default:
		out.Category = catTerm.Name
		if out.Category == "" {
			out.Category = DefaultArticleCategory
		}
	}

	// 仅食谱携带列表。
	out.ListItems = []string{}
	if kind == content.KindRecipe {
		rawIngredients := field("ingredients")
		items, shape := parseIngredients(rawIngredients)
		if rawIngredients != nil && shape == "" {
			log.WithField("field", "ingredients").Debug("ingredient list in unknown shape, using empty list")
		}
		out.ListItems = items
	}

	out.PrepTime = text("preparation_time")
	if out.PrepTime == "" {
		out.PrepTime = text("prep_time")
	}
	out.Difficulty = text("difficulty")
	out.Allergens = parseList(field("allergens"))
	riskLabel := text("allergy_risk")
	out.AllergyRisk = content.ParseRisk(riskLabel)
	if riskLabel != "" && out.AllergyRisk == content.RiskUnknown {
		log.WithField("allergy_risk", riskLabel).Debug("unrecognized allergy risk label")
	}
	out.StartAge = text("start_age")
	out.Benefits = text("benefits")

	author := firstMap(embedded["author"])
	if author == nil {
		author = mapOf(raw["author"])
	}
	authorName := plainText(firstString(author, "name"))
	if authorName == "" {
		authorName = plainText(stringOf(raw["author_name"]))
	}
	if authorName == "" {
		authorName = content.DefaultBrand
	}
	authorAvatar := pickAvatar(author["avatar_urls"])
	if authorAvatar == "" {
		authorAvatar = strings.TrimSpace(stringOf(raw["author_avatar"]))
	}
	out.Author = content.Author{Name: authorName, AvatarRef: authorAvatar, Visible: true}

	expertName := text("expert_name")
	expertAvatarRaw := field("expert_avatar")
	expertAvatar := strings.TrimSpace(stringOf(expertAvatarRaw))
	if m := mapOf(expertAvatarRaw); m != nil {
		expertAvatar = firstString(m, "url", "source_url")
	}
	expert := content.Expert{
		Name:      expertName,
		Title:     text("expert_title"),
		AvatarRef: expertAvatar,
		Note:      text("expert_note"),
		Visible:   expertName != "",
		Verified:  boolOf(field("is_expert_verified")),
	}
	if expert.Name == "" {
		expert.Name = authorName
	}
	if expert.Title == "" {
		expert.Title = content.DefaultExpertTitle
	}
	if expert.AvatarRef == "" {
		expert.AvatarRef = authorAvatar
	}
	out.Expert = expert

	return out, nil
}

// featuredImage 依次尝试嵌入的媒体对象与扁平字段。
func featuredImage(raw Record, embedded map[string]any) string {
	if media := firstMap(embedded["wp:featuredmedia"]); media != nil {
		if src := firstString(media, "source_url", "url"); src != "" {
			return src
		}
	}
	for _, key := range []string{"featured_image", "featured_image_url", "image"} {
		switch v := raw[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			if s := firstString(v, "source_url", "url"); s != "" {
				return s
			}
		}
	}
	return ""
}

func (n *Normalizer) logger() logrus.FieldLogger {
	if n == nil || n.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return n.Log
}
