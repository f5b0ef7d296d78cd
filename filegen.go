package objcgen

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// The minimum runtime the generated sources are checked against.
const objcRuntimeVersion = 30007

// fileGenerator renders the header/implementation pair for one file
// descriptor.
type fileGenerator struct {
	generator *Generator
	file      protoreflect.FileDescriptor
	prefix    string
	rootClass string
}

type printer struct {
	b strings.Builder
}

func (p *printer) p(format string, args ...any) {
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

func (p *printer) raw(s string) {
	p.b.WriteString(s)
}

func (fg *fileGenerator) runtimeImport(name string) string {
	if prefix := fg.generator.Options.RuntimeImportPrefix; prefix != "" {
		return prefix + "/" + name
	}
	return name
}

func (fg *fileGenerator) preamble(p *printer) {
	p.p("// Generated by the protocol buffer compiler. DO NOT EDIT!")
	p.p("// source: %s", fg.file.Path())
	p.p("")
}

func (fg *fileGenerator) header() string {
	p := &printer{}
	fg.preamble(p)
	p.p("#import %q", fg.runtimeImport("GPBDescriptor.h"))
	p.p("#import %q", fg.runtimeImport("GPBMessage.h"))
	p.p("#import %q", fg.runtimeImport("GPBRootObject.h"))
	p.p("")
	p.p("#if GOOGLE_PROTOBUF_OBJC_VERSION < %d", objcRuntimeVersion)
	p.p("#error This file was generated by a newer version of protoc which is incompatible with your Protocol Buffer library sources.")
	p.p("#endif")
	p.p("")

	if fg.generator.Options.HeadersUseForwardDeclarations {
		classes := fg.referencedClasses()
		for _, class := range classes {
			p.p("@class %s;", class)
		}
		if len(classes) > 0 {
			p.p("")
		}
	}

	p.p("NS_ASSUME_NONNULL_BEGIN")
	p.p("")

	for i := 0; i < fg.file.Enums().Len(); i++ {
		fg.enumDeclaration(p, fg.file.Enums().Get(i))
	}

	p.p("#pragma mark - %s", fg.rootClass)
	p.p("")
	p.p("/**")
	p.p(" * Exposes the extension registry for this file.")
	p.p(" **/")
	p.p("GPB_FINAL @interface %s : GPBRootObject", fg.rootClass)
	p.p("@end")
	p.p("")

	for i := 0; i < fg.file.Messages().Len(); i++ {
		fg.messageDeclaration(p, fg.file.Messages().Get(i))
	}

	p.p("NS_ASSUME_NONNULL_END")
	return p.b.String()
}

func (fg *fileGenerator) enumDeclaration(p *printer, ed protoreflect.EnumDescriptor) {
	name := fg.prefix + nestedTypeName(ed)
	p.p("#pragma mark - Enum %s", name)
	p.p("")
	p.raw(fg.commentsFor(ed, false))
	p.p("typedef GPB_ENUM(%s)%s {", name, GetOptionalDeprecatedAttribute(ed, ed.ParentFile(), true, false))
	if !ed.IsClosed() {
		p.p("  /**")
		p.p("   * Value used if any message's field encounters a value that is not defined")
		p.p("   * by this enum. The message will also have C functions to get/set the rawValue")
		p.p("   * of the field.")
		p.p("   **/")
		p.p("  %s_GPBUnrecognizedEnumeratorValue = kGPBUnrecognizedEnumeratorValue,", name)
	}
	for i := 0; i < ed.Values().Len(); i++ {
		evd := ed.Values().Get(i)
		if comment := fg.commentsFor(evd, true); comment != "" {
			p.raw(indent(comment, "  "))
		}
		p.p("  %s_%s = %d,%s",
			name,
			SanitizeNameForObjC(UnderscoresToCamelCase(string(evd.Name()), true)),
			evd.Number(),
			GetOptionalDeprecatedAttribute(evd, nil, true, false))
	}
	p.p("};")
	p.p("")
	p.p("GPBEnumDescriptor *%s_EnumDescriptor(void);", name)
	p.p("")
	p.p("/**")
	p.p(" * Checks to see if the given value is defined by the enum or was not known at")
	p.p(" * the time this source was generated.")
	p.p(" **/")
	p.p("BOOL %s_IsValidValue(int32_t value);", name)
	p.p("")
}

func (fg *fileGenerator) messageDeclaration(p *printer, md protoreflect.MessageDescriptor) {
	class := fg.prefix + nestedTypeName(md)
	p.p("#pragma mark - %s", class)
	p.p("")

	if md.Fields().Len() > 0 {
		p.p("typedef GPB_ENUM(%s_FieldNumber) {", class)
		for i := 0; i < md.Fields().Len(); i++ {
			fd := md.Fields().Get(i)
			p.p("  %s_FieldNumber_%s = %d,", class, FieldNameCapitalized(fd), fd.Number())
		}
		p.p("};")
		p.p("")
	}

	p.raw(fg.commentsFor(md, false))
	p.p("GPB_FINAL @interface %s : GPBMessage%s", class, GetOptionalDeprecatedAttribute(md, md.ParentFile(), true, false))
	p.p("")
	for i := 0; i < md.Fields().Len(); i++ {
		fg.fieldProperty(p, md.Fields().Get(i))
	}
	p.p("@end")
	p.p("")

	for i := 0; i < md.Enums().Len(); i++ {
		fg.enumDeclaration(p, md.Enums().Get(i))
	}
	for i := 0; i < md.Messages().Len(); i++ {
		nested := md.Messages().Get(i)
		if nested.IsMapEntry() {
			continue
		}
		fg.messageDeclaration(p, nested)
	}
}

func (fg *fileGenerator) fieldProperty(p *printer, fd protoreflect.FieldDescriptor) {
	if comment := fg.commentsFor(fd, true); comment != "" {
		p.raw(comment)
	}
	name := FieldName(fd)
	deprecated := GetOptionalDeprecatedAttribute(fd, nil, true, false)
	switch {
	case fd.IsMap():
		p.p("@property(nonatomic, readwrite, strong, null_resettable) %s *%s;%s",
			mapContainerType(fd), name, deprecated)
		p.p("/** The number of items in @c %s without causing the container to be created. */", name)
		p.p("@property(nonatomic, readonly) NSUInteger %s_Count;", name)
	case fd.IsList():
		p.p("@property(nonatomic, readwrite, strong, null_resettable) %s *%s;%s",
			fg.repeatedContainerType(fd), name, deprecated)
		p.p("/** The number of items in @c %s without causing the container to be created. */", name)
		p.p("@property(nonatomic, readonly) NSUInteger %s_Count;", name)
	default:
		switch GetObjectiveCType(fd.Kind()) {
		case ObjectiveCTypeString:
			p.p("@property(nonatomic, readwrite, copy, null_resettable) NSString *%s;%s", name, deprecated)
		case ObjectiveCTypeData:
			p.p("@property(nonatomic, readwrite, copy, null_resettable) NSData *%s;%s", name, deprecated)
		case ObjectiveCTypeMessage:
			p.p("@property(nonatomic, readwrite, strong, null_resettable) %s *%s;%s",
				fg.classNameFor(fd.Message()), name, deprecated)
			p.p("/** Test to see if @c %s has been set. */", name)
			p.p("@property(nonatomic, readwrite) BOOL has%s;", FieldNameCapitalized(fd))
		case ObjectiveCTypeEnum:
			p.p("@property(nonatomic, readwrite) %s %s;%s", fg.enumNameFor(fd.Enum()), name, deprecated)
			if fd.HasPresence() {
				p.p("@property(nonatomic, readwrite) BOOL has%s;", FieldNameCapitalized(fd))
			}
		default:
			p.p("@property(nonatomic, readwrite) %s %s;%s", scalarObjCType(fd), name, deprecated)
			if fd.HasPresence() {
				p.p("@property(nonatomic, readwrite) BOOL has%s;", FieldNameCapitalized(fd))
			}
		}
	}
	p.p("")
}

func (fg *fileGenerator) implementation() string {
	p := &printer{}
	fg.preamble(p)
	p.p("#import %q", fg.runtimeImport("GPBProtocolBuffers_RuntimeSupport.h"))
	p.p("#import %q", strings.TrimSuffix(fg.file.Path(), ".proto")+".pbobjc.h")
	p.p("")

	classes := fg.referencedClasses()
	for _, class := range classes {
		p.p("%s", ObjCClassDeclaration(class))
	}
	if len(classes) > 0 {
		p.p("")
	}

	p.p("#pragma mark - %s", fg.rootClass)
	p.p("")
	p.p("@implementation %s", fg.rootClass)
	p.p("@end")
	p.p("")
	p.p("static GPBFileDescription %s_FileDescription = {", fg.rootClass)
	p.p("  .package = %q,", string(fg.file.Package()))
	p.p("  .prefix = %q,", fg.prefix)
	p.p("  .syntax = %s", fileSyntax(fg.file))
	p.p("};")
	p.p("")

	for i := 0; i < fg.file.Enums().Len(); i++ {
		fg.enumImplementation(p, fg.file.Enums().Get(i))
	}
	for i := 0; i < fg.file.Messages().Len(); i++ {
		fg.messageImplementation(p, fg.file.Messages().Get(i))
	}
	return p.b.String()
}

func (fg *fileGenerator) enumImplementation(p *printer, ed protoreflect.EnumDescriptor) {
	name := fg.prefix + nestedTypeName(ed)
	p.p("#pragma mark - Enum %s", name)
	p.p("")
	p.p("GPBEnumDescriptor *%s_EnumDescriptor(void) {", name)
	p.p("  static GPBEnumDescriptor *descriptor = NULL;")
	p.p("  if (!descriptor) {")
	values := make([]string, 0, ed.Values().Len())
	for i := 0; i < ed.Values().Len(); i++ {
		values = append(values, string(ed.Values().Get(i).Name()))
	}
	p.p(`    static const char *valueNames = "%s";`, strings.Join(values, `\000`)+`\000`)
	p.p("    static const int32_t values[] = {")
	for i := 0; i < ed.Values().Len(); i++ {
		p.p("      %s_%s,", name, SanitizeNameForObjC(UnderscoresToCamelCase(string(ed.Values().Get(i).Name()), true)))
	}
	p.p("    };")
	var flags []string
	if ed.IsClosed() {
		flags = append(flags, "GPBEnumDescriptorInitializationFlag_IsClosed")
	}
	p.p("    descriptor = [GPBEnumDescriptor allocDescriptorForName:GPBNSStringifySymbol(%s)", name)
	p.p("                                               valueNames:valueNames")
	p.p("                                                   values:values")
	p.p("                                                    count:%d", ed.Values().Len())
	p.p("                                             enumVerifier:%s_IsValidValue", name)
	p.p("                                                    flags:%s];", BuildFlagsString(FlagTypeDescriptorInitialization, flags))
	p.p("  }")
	p.p("  return descriptor;")
	p.p("}")
	p.p("")
	p.p("BOOL %s_IsValidValue(int32_t value__) {", name)
	p.p("  switch (value__) {")
	seen := map[int32]bool{}
	for i := 0; i < ed.Values().Len(); i++ {
		evd := ed.Values().Get(i)
		if seen[int32(evd.Number())] {
			continue
		}
		seen[int32(evd.Number())] = true
		p.p("    case %s_%s:", name, SanitizeNameForObjC(UnderscoresToCamelCase(string(evd.Name()), true)))
	}
	p.p("      return YES;")
	p.p("    default:")
	p.p("      return NO;")
	p.p("  }")
	p.p("}")
	p.p("")
}

func (fg *fileGenerator) messageImplementation(p *printer, md protoreflect.MessageDescriptor) {
	class := fg.prefix + nestedTypeName(md)
	p.p("#pragma mark - %s", class)
	p.p("")
	p.p("@implementation %s", class)
	p.p("")
	for i := 0; i < md.Fields().Len(); i++ {
		fd := md.Fields().Get(i)
		p.p("@dynamic %s;", FieldName(fd))
		if hasHasProperty(fd) {
			p.p("@dynamic has%s;", FieldNameCapitalized(fd))
		}
	}
	p.p("")
	p.p("typedef struct %s__storage_ {", class)
	p.p("  uint32_t _has_storage_[%d];", 1+md.Fields().Len()/32)
	for i := 0; i < md.Fields().Len(); i++ {
		fd := md.Fields().Get(i)
		p.p("  %s%s;", fg.storageType(fd), FieldName(fd))
	}
	p.p("} %s__storage_;", class)
	p.p("")
	p.p("+ (GPBDescriptor *)descriptor {")
	p.p("  static GPBDescriptor *descriptor = nil;")
	p.p("  if (!descriptor) {")
	if md.Fields().Len() > 0 {
		p.p("    static GPBMessageFieldDescription fields[] = {")
		for i := 0; i < md.Fields().Len(); i++ {
			fg.fieldDescription(p, md.Fields().Get(i), class)
		}
		p.p("    };")
	}
	p.p("    descriptor = [GPBDescriptor allocDescriptorForClass:GPBObjCClass(%s)", class)
	p.p("                                            messageName:@%q", string(md.Name()))
	p.p("                                        fileDescription:&%s_FileDescription", fg.rootClass)
	if md.Fields().Len() > 0 {
		p.p("                                                 fields:fields")
		p.p("                                             fieldCount:(uint32_t)(sizeof(fields) / sizeof(GPBMessageFieldDescription))")
	} else {
		p.p("                                                 fields:NULL")
		p.p("                                             fieldCount:0")
	}
	p.p("                                            storageSize:sizeof(%s__storage_)", class)
	p.p("                                                  flags:%s];", BuildFlagsString(FlagTypeDescriptorInitialization, nil))
	p.p("  }")
	p.p("  return descriptor;")
	p.p("}")
	p.p("")
	p.p("@end")
	p.p("")

	for i := 0; i < md.Enums().Len(); i++ {
		fg.enumImplementation(p, md.Enums().Get(i))
	}
	for i := 0; i < md.Messages().Len(); i++ {
		nested := md.Messages().Get(i)
		if nested.IsMapEntry() {
			continue
		}
		fg.messageImplementation(p, nested)
	}
}

func (fg *fileGenerator) fieldDescription(p *printer, fd protoreflect.FieldDescriptor, class string) {
	p.p("      {")
	p.p("        .name = %q,", FieldName(fd))
	switch GetObjectiveCType(fd.Kind()) {
	case ObjectiveCTypeMessage:
		p.p("        .dataTypeSpecific.clazz = %s,", ObjCClass(fg.classNameFor(fd.Message())))
	case ObjectiveCTypeEnum:
		p.p("        .dataTypeSpecific.enumDescFunc = %s_EnumDescriptor,", fg.enumNameFor(fd.Enum()))
	default:
		p.p("        .dataTypeSpecific.clazz = Nil,")
	}
	p.p("        .number = %s_FieldNumber_%s,", class, FieldNameCapitalized(fd))
	p.p("        .hasIndex = %d,", hasIndex(fd))
	p.p("        .offset = (uint32_t)offsetof(%s__storage_, %s),", class, FieldName(fd))
	p.p("        .flags = %s,", BuildFlagsString(FlagTypeField, fieldFlags(fd)))
	p.p("        .dataType = GPBDataType%s,", GetCapitalizedType(fd))
	if fd.HasDefault() {
		p.p("        .defaultValue.%s = %s,", GPBGenericValueFieldName(fd), DefaultValue(fd))
	}
	p.p("      },")
}

func fieldFlags(fd protoreflect.FieldDescriptor) []string {
	var flags []string
	switch {
	case fd.IsMap():
		flags = append(flags, "GPBFieldMapKey"+GetCapitalizedType(fd.MapKey()))
	case fd.IsList():
		flags = append(flags, "GPBFieldRepeated")
		if fd.IsPacked() {
			flags = append(flags, "GPBFieldPacked")
		}
	case fd.Cardinality() == protoreflect.Required:
		flags = append(flags, "GPBFieldRequired")
	default:
		flags = append(flags, "GPBFieldOptional")
	}
	if fd.HasDefault() {
		flags = append(flags, "GPBFieldHasDefaultValue")
	}
	if fd.Kind() == protoreflect.EnumKind {
		flags = append(flags, "GPBFieldHasEnumDescriptor")
		if fd.Enum().IsClosed() {
			flags = append(flags, "GPBFieldClosedEnum")
		}
	}
	return flags
}

func hasHasProperty(fd protoreflect.FieldDescriptor) bool {
	if fd.IsList() || fd.IsMap() {
		return false
	}
	return GetObjectiveCType(fd.Kind()) == ObjectiveCTypeMessage || fd.HasPresence()
}

func hasIndex(fd protoreflect.FieldDescriptor) int {
	// Repeated, map, and presence-less fields track "has" through the
	// container or the zero value instead of a has bit.
	if !fd.HasPresence() {
		return -1
	}
	return fd.Index()
}

// storageType ends with "* " or " " so a field name can be appended
// directly.
func (fg *fileGenerator) storageType(fd protoreflect.FieldDescriptor) string {
	switch {
	case fd.IsMap():
		return mapContainerType(fd) + " *"
	case fd.IsList():
		return fg.repeatedContainerType(fd) + " *"
	}
	switch GetObjectiveCType(fd.Kind()) {
	case ObjectiveCTypeString:
		return "NSString *"
	case ObjectiveCTypeData:
		return "NSData *"
	case ObjectiveCTypeMessage:
		return fg.classNameFor(fd.Message()) + " *"
	case ObjectiveCTypeEnum:
		return fg.enumNameFor(fd.Enum()) + " "
	default:
		return scalarObjCType(fd) + " "
	}
}

func (fg *fileGenerator) repeatedContainerType(fd protoreflect.FieldDescriptor) string {
	switch GetObjectiveCType(fd.Kind()) {
	case ObjectiveCTypeString:
		return "NSMutableArray<NSString*>"
	case ObjectiveCTypeData:
		return "NSMutableArray<NSData*>"
	case ObjectiveCTypeMessage:
		return "NSMutableArray<" + fg.classNameFor(fd.Message()) + "*>"
	case ObjectiveCTypeEnum:
		return "GPBEnumArray"
	case ObjectiveCTypeBoolean:
		return "GPBBoolArray"
	default:
		return "GPB" + GetCapitalizedType(fd) + "Array"
	}
}

func mapContainerType(fd protoreflect.FieldDescriptor) string {
	key := objcBoxedType(fd.MapKey())
	value := objcBoxedType(fd.MapValue())
	return "NSMutableDictionary<" + key + ", " + value + ">"
}

func objcBoxedType(fd protoreflect.FieldDescriptor) string {
	switch GetObjectiveCType(fd.Kind()) {
	case ObjectiveCTypeString:
		return "NSString*"
	case ObjectiveCTypeData:
		return "NSData*"
	case ObjectiveCTypeMessage:
		return "GPBMessage*"
	default:
		return "NSNumber*"
	}
}

func scalarObjCType(fd protoreflect.FieldDescriptor) string {
	switch GetObjectiveCType(fd.Kind()) {
	case ObjectiveCTypeInt32:
		return "int32_t"
	case ObjectiveCTypeUint32:
		return "uint32_t"
	case ObjectiveCTypeInt64:
		return "int64_t"
	case ObjectiveCTypeUint64:
		return "uint64_t"
	case ObjectiveCTypeFloat:
		return "float"
	case ObjectiveCTypeDouble:
		return "double"
	case ObjectiveCTypeBoolean:
		return "BOOL"
	default:
		panic(fmt.Sprintf("not a scalar kind: %v", fd.Kind()))
	}
}

func (fg *fileGenerator) classNameFor(md protoreflect.MessageDescriptor) string {
	if md.ParentFile() == fg.file {
		return fg.prefix + nestedTypeName(md)
	}
	return ClassName(md)
}

func (fg *fileGenerator) enumNameFor(ed protoreflect.EnumDescriptor) string {
	if ed.ParentFile() == fg.file {
		return fg.prefix + nestedTypeName(ed)
	}
	return EnumName(ed)
}

// referencedClasses lists the classes of message-typed fields declared in
// this file, in declaration order without duplicates.
func (fg *fileGenerator) referencedClasses() []string {
	var classes []string
	seen := map[string]bool{}
	var walk func(md protoreflect.MessageDescriptor)
	collect := func(fields protoreflect.FieldDescriptors) {
		for i := 0; i < fields.Len(); i++ {
			fd := fields.Get(i)
			if fd.IsMap() || GetObjectiveCType(fd.Kind()) != ObjectiveCTypeMessage {
				continue
			}
			class := fg.classNameFor(fd.Message())
			if !seen[class] {
				seen[class] = true
				classes = append(classes, class)
			}
		}
	}
	walk = func(md protoreflect.MessageDescriptor) {
		collect(md.Fields())
		for i := 0; i < md.Messages().Len(); i++ {
			if nested := md.Messages().Get(i); !nested.IsMapEntry() {
				walk(nested)
			}
		}
	}
	for i := 0; i < fg.file.Messages().Len(); i++ {
		walk(fg.file.Messages().Get(i))
	}
	return classes
}

func (fg *fileGenerator) commentsFor(d protoreflect.Descriptor, preferSingleLine bool) string {
	return BuildCommentsString(fg.file.SourceLocations().ByDescriptor(d), preferSingleLine)
}

func fileSyntax(fd protoreflect.FileDescriptor) string {
	switch fd.Syntax() {
	case protoreflect.Proto3:
		return "GPBFileSyntaxProto3"
	case protoreflect.Editions:
		return "GPBFileSyntaxProtoEditions"
	default:
		return "GPBFileSyntaxProto2"
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
