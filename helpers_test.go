package objcgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

func buildFile(t *testing.T, fdp *descriptorpb.FileDescriptorProto) protoreflect.FileDescriptor {
	t.Helper()
	fd, err := protodesc.NewFile(fdp, nil)
	require.NoError(t, err)
	return fd
}

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func fieldWithDefault(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, def string) *descriptorpb.FieldDescriptorProto {
	f := field(name, number, typ)
	f.DefaultValue = proto.String(def)
	return f
}

// defaultsFile builds a proto2 file covering every scalar default form.
func defaultsFile(t *testing.T) protoreflect.FileDescriptor {
	t.Helper()
	enumField := fieldWithDefault("an_enum", 11, descriptorpb.FieldDescriptorProto_TYPE_ENUM, "BAZ")
	enumField.TypeName = proto.String(".objc.test.Color")
	return buildFile(t, &descriptorpb.FileDescriptorProto{
		Name:    proto.String("objc/test/defaults.proto"),
		Package: proto.String("objc.test"),
		Syntax:  proto.String("proto2"),
		EnumType: []*descriptorpb.EnumDescriptorProto{{
			Name: proto.String("Color"),
			Value: []*descriptorpb.EnumValueDescriptorProto{
				{Name: proto.String("BAR"), Number: proto.Int32(1)},
				{Name: proto.String("BAZ"), Number: proto.Int32(2)},
			},
		}},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Defaults"),
			Field: []*descriptorpb.FieldDescriptorProto{
				fieldWithDefault("an_int32", 1, descriptorpb.FieldDescriptorProto_TYPE_INT32, "41"),
				fieldWithDefault("min_int32", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32, "-2147483648"),
				fieldWithDefault("an_uint32", 3, descriptorpb.FieldDescriptorProto_TYPE_UINT32, "42"),
				fieldWithDefault("an_int64", 4, descriptorpb.FieldDescriptorProto_TYPE_INT64, "-43"),
				fieldWithDefault("min_int64", 5, descriptorpb.FieldDescriptorProto_TYPE_INT64, "-9223372036854775808"),
				fieldWithDefault("an_uint64", 6, descriptorpb.FieldDescriptorProto_TYPE_UINT64, "44"),
				fieldWithDefault("a_float", 7, descriptorpb.FieldDescriptorProto_TYPE_FLOAT, "4.5"),
				fieldWithDefault("a_double", 8, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE, "inf"),
				fieldWithDefault("a_bool", 9, descriptorpb.FieldDescriptorProto_TYPE_BOOL, "true"),
				fieldWithDefault("a_string", 10, descriptorpb.FieldDescriptorProto_TYPE_STRING, "hello??"),
				enumField,
				fieldWithDefault("some_bytes", 12, descriptorpb.FieldDescriptorProto_TYPE_BYTES, `\001\002`),
				field("empty_string", 13, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			},
		}},
	})
}

func TestGetObjectiveCType(t *testing.T) {
	testCases := []struct {
		kind protoreflect.Kind
		want ObjectiveCType
	}{
		{protoreflect.Int32Kind, ObjectiveCTypeInt32},
		{protoreflect.Sint32Kind, ObjectiveCTypeInt32},
		{protoreflect.Sfixed32Kind, ObjectiveCTypeInt32},
		{protoreflect.Uint32Kind, ObjectiveCTypeUint32},
		{protoreflect.Fixed32Kind, ObjectiveCTypeUint32},
		{protoreflect.Int64Kind, ObjectiveCTypeInt64},
		{protoreflect.Sint64Kind, ObjectiveCTypeInt64},
		{protoreflect.Sfixed64Kind, ObjectiveCTypeInt64},
		{protoreflect.Uint64Kind, ObjectiveCTypeUint64},
		{protoreflect.Fixed64Kind, ObjectiveCTypeUint64},
		{protoreflect.FloatKind, ObjectiveCTypeFloat},
		{protoreflect.DoubleKind, ObjectiveCTypeDouble},
		{protoreflect.BoolKind, ObjectiveCTypeBoolean},
		{protoreflect.StringKind, ObjectiveCTypeString},
		{protoreflect.BytesKind, ObjectiveCTypeData},
		{protoreflect.EnumKind, ObjectiveCTypeEnum},
		{protoreflect.MessageKind, ObjectiveCTypeMessage},
		{protoreflect.GroupKind, ObjectiveCTypeMessage},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, GetObjectiveCType(tc.kind), tc.kind.String())
	}
}

func TestGetCapitalizedType(t *testing.T) {
	fd := buildFile(t, &descriptorpb.FileDescriptorProto{
		Name:    proto.String("types.proto"),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Types"),
			Field: []*descriptorpb.FieldDescriptorProto{
				field("a", 1, descriptorpb.FieldDescriptorProto_TYPE_SINT32),
				field("b", 2, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64),
				field("c", 3, descriptorpb.FieldDescriptorProto_TYPE_FIXED32),
				field("d", 4, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
				field("e", 5, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
			},
		}},
	})
	fields := fd.Messages().Get(0).Fields()
	want := []string{"SInt32", "SFixed64", "Fixed32", "Bytes", "Bool"}
	for i, expected := range want {
		assert.Equal(t, expected, GetCapitalizedType(fields.Get(i)))
	}
}

func TestDefaultValue(t *testing.T) {
	fd := defaultsFile(t)
	fields := fd.Messages().Get(0).Fields()
	byName := func(name string) protoreflect.FieldDescriptor {
		f := fields.ByName(protoreflect.Name(name))
		require.NotNil(t, f, name)
		return f
	}
	assert.Equal(t, "41", DefaultValue(byName("an_int32")))
	assert.Equal(t, "-0x80000000", DefaultValue(byName("min_int32")))
	assert.Equal(t, "42U", DefaultValue(byName("an_uint32")))
	assert.Equal(t, "-43LL", DefaultValue(byName("an_int64")))
	assert.Equal(t, "-0x8000000000000000LL", DefaultValue(byName("min_int64")))
	assert.Equal(t, "44ULL", DefaultValue(byName("an_uint64")))
	assert.Equal(t, "4.5f", DefaultValue(byName("a_float")))
	assert.Equal(t, "INFINITY", DefaultValue(byName("a_double")))
	assert.Equal(t, "YES", DefaultValue(byName("a_bool")))
	assert.Equal(t, `@"hello\?\?"`, DefaultValue(byName("a_string")))
	assert.Equal(t, "2", DefaultValue(byName("an_enum")))
	assert.Equal(t, `(NSData*)"\000\000\000\002\001\002"`, DefaultValue(byName("some_bytes")))
	assert.Equal(t, "nil", DefaultValue(byName("empty_string")))
}

func TestGPBGenericValueFieldName(t *testing.T) {
	fd := defaultsFile(t)
	fields := fd.Messages().Get(0).Fields()
	assert.Equal(t, "valueInt32", GPBGenericValueFieldName(fields.ByName("an_int32")))
	assert.Equal(t, "valueUInt64", GPBGenericValueFieldName(fields.ByName("an_uint64")))
	assert.Equal(t, "valueString", GPBGenericValueFieldName(fields.ByName("a_string")))
	assert.Equal(t, "valueData", GPBGenericValueFieldName(fields.ByName("some_bytes")))
	assert.Equal(t, "valueEnum", GPBGenericValueFieldName(fields.ByName("an_enum")))
}

func TestBuildFlagsString(t *testing.T) {
	assert.Equal(t, "GPBFieldNone", BuildFlagsString(FlagTypeField, nil))
	assert.Equal(t, "GPBExtensionNone", BuildFlagsString(FlagTypeExtension, nil))
	assert.Equal(t, "GPBDescriptorInitializationFlag_None",
		BuildFlagsString(FlagTypeDescriptorInitialization, nil))
	assert.Equal(t, "GPBFieldOptional", BuildFlagsString(FlagTypeField, []string{"GPBFieldOptional"}))
	assert.Equal(t, "(GPBFieldFlags)(GPBFieldRepeated | GPBFieldPacked)",
		BuildFlagsString(FlagTypeField, []string{"GPBFieldRepeated", "GPBFieldPacked"}))
}

func TestObjCClass(t *testing.T) {
	assert.Equal(t, "GPBObjCClass(TUTPerson)", ObjCClass("TUTPerson"))
	assert.Equal(t, "GPBObjCClassDeclaration(TUTPerson);", ObjCClassDeclaration("TUTPerson"))
}

func TestEscapeTrigraphs(t *testing.T) {
	assert.Equal(t, `what\?\?!`, EscapeTrigraphs("what??!"))
	assert.Equal(t, "plain", EscapeTrigraphs("plain"))
}

func TestHasPreservingUnknownEnumSemantics(t *testing.T) {
	proto3 := buildFile(t, &descriptorpb.FileDescriptorProto{
		Name:   proto.String("p3.proto"),
		Syntax: proto.String("proto3"),
	})
	proto2 := buildFile(t, &descriptorpb.FileDescriptorProto{
		Name:   proto.String("p2.proto"),
		Syntax: proto.String("proto2"),
	})
	assert.True(t, HasPreservingUnknownEnumSemantics(proto3))
	assert.False(t, HasPreservingUnknownEnumSemantics(proto2))
}

func TestGetOptionalDeprecatedAttribute(t *testing.T) {
	deprecatedField := field("old_field", 1, descriptorpb.FieldDescriptorProto_TYPE_INT32)
	deprecatedField.Options = &descriptorpb.FieldOptions{Deprecated: proto.Bool(true)}
	fd := buildFile(t, &descriptorpb.FileDescriptorProto{
		Name:    proto.String("dep.proto"),
		Package: proto.String("dep"),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name:  proto.String("Msg"),
			Field: []*descriptorpb.FieldDescriptorProto{deprecatedField},
		}},
	})
	md := fd.Messages().Get(0)
	f := md.Fields().Get(0)

	assert.Equal(t,
		` GPB_DEPRECATED_MSG("dep.Msg.old_field is deprecated (see dep.proto).")`,
		GetOptionalDeprecatedAttribute(f, nil, true, false))
	assert.Equal(t,
		`GPB_DEPRECATED_MSG("dep.Msg.old_field is deprecated (see dep.proto).")`+"\n",
		GetOptionalDeprecatedAttribute(f, nil, false, true))
	// The message itself is not deprecated.
	assert.Equal(t, "", GetOptionalDeprecatedAttribute(md, fd, true, false))

	deprecatedFile := buildFile(t, &descriptorpb.FileDescriptorProto{
		Name:    proto.String("old.proto"),
		Package: proto.String("old"),
		Syntax:  proto.String("proto2"),
		Options: &descriptorpb.FileOptions{Deprecated: proto.Bool(true)},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Lingering"),
		}},
	})
	assert.Equal(t,
		` GPB_DEPRECATED_MSG("old.proto is deprecated.")`,
		GetOptionalDeprecatedAttribute(deprecatedFile.Messages().Get(0), deprecatedFile, true, false))
}
