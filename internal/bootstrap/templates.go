package bootstrap

const makefileContent = `run:
	flutter run -d chrome

run_ios:
	flutter run -d ios

run_android:
	flutter run -d android

analyze:
	flutter analyze

test:
	flutter test

integration:
	flutter test integration_test
`

const analysisOptionsContent = `include: package:flutter_lints/flutter.yaml

linter:
  rules:
    avoid_print: false
    prefer_const_constructors: true
`

const ciWorkflowContent = `name: Flutter CI

on:
  push:
    branches: [ main ]
  pull_request:

jobs:
  build:
    runs-on: macos-latest
    steps:
      - uses: actions/checkout@v4
      - uses: subosito/flutter-action@v2
        with:
          flutter-version: 'stable'
      - run: flutter pub get
      - run: flutter analyze
      - run: flutter test
`

const envFileContent = `# Example environment variables
API_URL=https://api.example.com
`

const unitTestContent = `import 'package:flutter_test/flutter_test.dart';

void main() {
  test('sanity check', () {
    expect(1 + 1, equals(2));
  });
}
`

const widgetTestTemplate = `import 'package:flutter_test/flutter_test.dart';
import 'package:%s/main.dart';

void main() {
  testWidgets('App loads without errors', (tester) async {
    await tester.pumpWidget(const MyApp());
    expect(find.byType(MyApp), findsOneWidget);
  });
}
`

const integrationTestTemplate = `import 'package:integration_test/integration_test.dart';
import 'package:flutter_test/flutter_test.dart';
import 'package:%s/main.dart';

void main() {
  IntegrationTestWidgetsFlutterBinding.ensureInitialized();

  testWidgets('home page renders', (tester) async {
    await tester.pumpWidget(const MyApp());
    expect(find.byType(MyApp), findsOneWidget);
  });
}
`

const readmeTemplate = `# %s

Flutter app scaffolded by flutterkit.

## Quickstart
` + "```bash" + `
flutter pub get
make run            # runs on Chrome by default
` + "```" + `

## Testing
` + "```bash" + `
make test           # unit + widget tests
make integration    # integration_test/
` + "```" + `

## Linting
` + "```bash" + `
make analyze
` + "```" + `

## Env vars
Edit ` + "`.env`" + ` and access with ` + "`dotenv.env['KEY']`" + ` after startup.
`

const dotenvImport = `import 'package:flutter_dotenv/flutter_dotenv.dart';`

const dotenvMainPrelude = "Future<void> main() async {\n  await dotenv.load(fileName: \".env\");"
