package render

import (
	"github.com/specialistvlad/monox/internal/config"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// translations maps every English format string to its Simplified Chinese
// counterpart. The English string doubles as the catalog key.
var translations = [][2]string{
	{"Analysis Result", "分析结果"},
	{"Total packages: %d", "总包数: %d"},
	{"Build stages: %d", "构建阶段数: %d"},
	{"Packages with workspace deps: %d", "有工作区依赖的包: %d"},
	{"Circular dependencies: %d", "循环依赖数: %d"},
	{"Analysis duration: %dms", "分析耗时: %dms"},
	{"Circular Dependencies", "循环依赖"},
	{"No circular dependencies found", "未发现循环依赖"},
	{"Circular dependencies detected, cannot calculate build stages", "检测到循环依赖，无法计算构建阶段"},
	{"Build Stages", "构建阶段"},
	{"Stage %d (%d packages):", "阶段 %d (%d 个包):"},
	{"no workspace dependencies", "无工作区依赖"},
	{"depends on: %s", "依赖: %s"},
	{"Path: %s", "路径: %s"},
	{"Version: %s", "版本: %s"},
	{"Scripts: %s", "脚本: %s"},
	{"Tip: Use --detail to show dependencies, --verbose for more details, --format json for JSON output", "提示: 使用 --detail 显示依赖详情，使用 --verbose 查看更多信息，使用 --format json 输出 JSON 格式"},
	{"Version Conflicts", "版本冲突"},
	{"No version conflicts found", "未发现版本冲突"},
	{"recommended: %s", "推荐版本: %s"},
	{"Outdated Dependencies", "过时依赖"},
	{"All %d dependencies are up to date", "全部 %d 个依赖均为最新"},
	{"%d of %d dependencies are outdated", "%d / %d 个依赖已过时"},
	{"Dependency", "依赖"},
	{"Package", "包"},
	{"Current", "当前"},
	{"Latest", "最新"},
	{"Spec", "版本声明"},
	{"Resolved", "解析版本"},
	{"Type", "类型"},
	{"Old", "原版本"},
	{"New", "新版本"},
	{"Stage", "阶段"},
	{"Status", "状态"},
	{"Attempts", "尝试次数"},
	{"Duration", "耗时"},
	{"Planned Changes", "计划变更"},
	{"Applied Changes", "已应用变更"},
	{"Nothing to change", "无需变更"},
	{"Checking registry", "查询镜像源"},
	{"Stage %d: %d succeeded, %d failed, %d timed out, %d cancelled, %d skipped (%s)", "阶段 %d: 成功 %d，失败 %d，超时 %d，取消 %d，跳过 %d (%s)"},
	{"Run Summary: %s", "执行汇总: %s"},
	{"Succeeded: %d", "成功: %d"},
	{"Failed: %d", "失败: %d"},
	{"Timed out: %d", "超时: %d"},
	{"Cancelled: %d", "取消: %d"},
	{"Skipped: %d", "跳过: %d"},
	{"Stages not started: %d", "未开始的阶段: %d"},
	{"Total duration: %s", "总耗时: %s"},
	{"Output of %s:", "%s 的输出:"},
	{"Config file already exists: %s", "配置文件已存在: %s"},
	{"Use --force to overwrite existing config file", "使用 --force 参数强制覆盖现有配置文件"},
	{"Config file created: %s", "配置文件已创建: %s"},
	{"You can now edit the config file to suit your project needs", "接下来您可以编辑配置文件以满足项目需求"},
	{"Apply %d changes? [y/N]: ", "应用 %d 项变更? [y/N]: "},
	{"Aborted", "已取消"},
}

var catalogBuilder = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	for _, tr := range translations {
		_ = b.SetString(language.AmericanEnglish, tr[0], tr[0])
	}
	for _, tr := range translations {
		_ = b.SetString(language.SimplifiedChinese, tr[0], tr[1])
	}
	return b
}

// Tag maps a configured language identifier to its language tag. Unknown
// identifiers fall back to American English.
func Tag(lang string) language.Tag {
	if lang == config.LanguageZhCN {
		return language.SimplifiedChinese
	}
	return language.AmericanEnglish
}

// NewPrinter returns a printer localized for lang.
func NewPrinter(lang string) *message.Printer {
	return message.NewPrinter(Tag(lang), message.Catalog(catalogBuilder))
}
